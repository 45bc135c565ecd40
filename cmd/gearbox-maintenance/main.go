package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/boinkor-net/gearbox-maintenance/config"
	"github.com/boinkor-net/gearbox-maintenance/janitor"
	"github.com/boinkor-net/gearbox-maintenance/metrics"
	"github.com/boinkor-net/gearbox-maintenance/pkg/log"
	"github.com/boinkor-net/gearbox-maintenance/transmission"
)

func run(configFilePath string, takeAction bool, prometheusAddr string) error {
	instances, err := config.ParseConfigFile(configFilePath)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	var tasks []janitor.Task
	for _, instance := range instances {
		client := transmission.New(instance.URL, instance.User, instance.Password)
		poller, err := janitor.NewPoller(instance, client, m, takeAction)
		if err != nil {
			return err
		}

		tasks = append(tasks, janitor.Task{Name: instance.URL, Run: poller.Run})
	}

	if prometheusAddr != "" {
		srv := metrics.NewServer(prometheusAddr, registry)
		tasks = append(tasks, janitor.Task{Name: "prometheus", Run: srv.ListenAndServe})
		log.Info("serving prometheus metrics", log.Fields{
			"metrics_endpoint": "http://" + prometheusAddr + "/metrics",
		})
	}

	if !takeAction {
		log.Info("dry run: matched torrents will be reported, not deleted")
	}

	// None of these tasks has a valid reason to return.
	return janitor.Supervise(tasks)
}

func main() {
	var configFilePath string
	var takeAction bool
	var prometheusAddr string
	var debug bool

	var rootCmd = &cobra.Command{
		Use:   "gearbox-maintenance",
		Short: "Transmission torrent janitor",
		Long:  "Periodically deletes torrents on remote Transmission instances according to declarative retention policies",
		Run: func(cmd *cobra.Command, args []string) {
			log.SetDebug(debug)
			if err := run(configFilePath, takeAction, prometheusAddr); err != nil {
				log.Fatal("failed to run", log.Err(err))
			}
		},
	}

	rootCmd.Flags().StringVar(&configFilePath, "config", "/etc/gearbox-maintenance.yaml", "location of configuration file")
	rootCmd.Flags().BoolVarP(&takeAction, "take-action", "f", false, "actually perform policy actions instead of a dry run")
	rootCmd.Flags().StringVar(&prometheusAddr, "prometheus-addr", "", "network address to serve prometheus metrics on")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal("failed to execute", log.Err(err))
	}
}
