/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chen-001/tapirtwins-go/internal/config"
	"github.com/chen-001/tapirtwins-go/internal/container"
	"github.com/chen-001/tapirtwins-go/internal/metrics"
	"github.com/chen-001/tapirtwins-go/internal/websocket"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow live task events in the default space",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctr *container.Container) error {
			svc := ctr.TaskService()
			if err := svc.Refresh(cmd.Context()); err != nil {
				return err
			}

			spaceID, err := ctr.Settings().DefaultSpaceID()
			if err != nil {
				return err
			}
			if spaceID == "" {
				return fmt.Errorf("no default space configured, run 'tapirtwins space default <space-id>' first")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// 长驻期间热更新日志级别
			if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
				watcher := config.NewConfigWatcher(ctr.Config(), configPath)
				watcher.OnConfigChange(func(cfg *config.Config) {
					level, err := logrus.ParseLevel(cfg.Log.Level)
					if err != nil {
						ctr.Logger().WithError(err).Warn("ignoring invalid log level from config change")
						return
					}
					ctr.Logger().SetLevel(level)
					ctr.Logger().WithField("level", cfg.Log.Level).Info("log level updated from config change")
				})
				if err := watcher.Start(); err != nil {
					ctr.Logger().WithError(err).Warn("config watcher failed to start")
				} else {
					defer watcher.Stop()
				}
			}

			listener := ctr.NewSpaceListener(spaceID, func(ev websocket.Event) {
				fmt.Printf("event: %s task=%s\n", ev.Type, ev.TaskID)
				if err := svc.Refresh(ctx); err == nil {
					fmt.Printf("  refreshed: %d tasks, %d records today\n", len(svc.Tasks()), len(svc.TodayRecords()))
				}
			})

			// 长驻期间暴露指标端点
			if metricsAddr, _ := cmd.Flags().GetString("metrics-addr"); metricsAddr != "" {
				gin.SetMode(gin.ReleaseMode)
				router := gin.New()
				router.GET("/metrics", gin.WrapH(metrics.Handler()))
				go func() {
					if err := http.ListenAndServe(metricsAddr, router); err != nil {
						ctr.Logger().WithError(err).Warn("metrics server stopped")
					}
				}()
			}

			fmt.Printf("watching space %s, press Ctrl+C to stop\n", spaceID)
			return listener.Run(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().String("metrics-addr", "", "Expose Prometheus metrics on this address while watching (e.g. :9090)")
}
