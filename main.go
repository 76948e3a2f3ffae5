package main

import (
	"context"
	"log"
	"os"

	"github.com/example/todo-tracker/config"
	"github.com/example/todo-tracker/modules/activity"
	"github.com/example/todo-tracker/modules/api"
	"github.com/example/todo-tracker/modules/manager"
	"github.com/example/todo-tracker/modules/storage"
	"github.com/example/todo-tracker/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	kvjetstream "github.com/go-monolith/mono/plugin/kv-jetstream"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("=== To-Do Tracker ===")
	log.Printf("HTTP Address: %s", cfg.HTTPAddr)
	log.Printf("Storage Backend: %s", cfg.Backend)
	log.Printf("Storage Key: %s", cfg.StorageKey)

	logLevel := mono.LogLevelInfo
	if cfg.LogLevel == config.LogLevelError {
		logLevel = mono.LogLevelError
	}

	// Create mono application with embedded NATS JetStream
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithJetStreamStorageDir(cfg.JetStreamDir),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	storagePlugin, alias, err := newStoragePlugin(cfg)
	if err != nil {
		log.Fatalf("Failed to create storage plugin: %v", err)
	}
	if err := app.RegisterPlugin(storagePlugin, alias); err != nil {
		log.Fatalf("Failed to register storage plugin: %v", err)
	}

	// Create modules
	taskModule := task.NewModule(cfg.StorageKey, cfg.StorageKey, app.Logger())
	activityModule := activity.NewModule(cfg.ActivityMaxEntries, app.Logger())
	managerModule := manager.NewModule(app.Logger(), manager.WithOperationTimeout(cfg.OperationTimeout))
	apiModule := api.NewModule(cfg.HTTPAddr, managerModule.Manager(), managerModule.Errors(), app.Logger())

	// Register modules
	for _, m := range []mono.Module{taskModule, activityModule, managerModule, apiModule} {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register %s module: %v", m.Name(), err)
		}
	}

	// Start the application
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	printStartupInfo(cfg)

	// Setup graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	// Wait for shutdown signal
	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// newStoragePlugin returns the kv-jetstream plugin for the jetstream backend
// and the storage plugin for every other backend, with the alias the task
// module expects.
func newStoragePlugin(cfg config.Config) (mono.PluginModule, string, error) {
	if cfg.Backend == storage.BackendJetStream {
		kvPlugin, err := kvjetstream.New(kvjetstream.Config{
			Buckets: []kvjetstream.BucketConfig{
				{
					Name:        cfg.StorageKey,
					Description: "Task list",
					Storage:     kvjetstream.FileStorage,
				},
			},
		})
		if err != nil {
			return nil, "", err
		}
		return kvPlugin, task.KVPluginAlias, nil
	}
	return storage.NewPluginModule(cfg.StorageConfig()), task.StoragePluginAlias, nil
}

func printStartupInfo(cfg config.Config) {
	log.Println("=== Application Started ===")
	log.Printf("API available at http://localhost%s", cfg.HTTPAddr)
	log.Println("Endpoints:")
	log.Println("  GET    /health                          - Health check")
	log.Println("  GET    /api/v1/tasks?filter=            - Filtered, sorted view")
	log.Println("  GET    /api/v1/tasks/all                - Every task in storage order")
	log.Println("  GET    /api/v1/tasks/stats              - Task statistics")
	log.Println("  POST   /api/v1/tasks                    - Add a task")
	log.Println("  POST   /api/v1/tasks/validate           - Validate a task form")
	log.Println("  PUT    /api/v1/tasks/:id                - Update a task")
	log.Println("  POST   /api/v1/tasks/:id/toggle         - Toggle completion")
	log.Println("  DELETE /api/v1/tasks/:id                - Delete a task")
	log.Println("  DELETE /api/v1/tasks/completed          - Clear completed tasks")
	log.Println("  DELETE /api/v1/tasks                    - Clear all tasks")
	log.Println("  PUT    /api/v1/filter                   - Change the active filter")
	log.Println("  GET    /api/v1/errors/current           - Current error report")
	log.Println("  DELETE /api/v1/errors/current           - Acknowledge the error")
	log.Println("  GET    /api/v1/activity                 - Recent activity")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")
}
