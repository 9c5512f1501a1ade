package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/carlosrabelo/mirante/core/application/services"
	"github.com/carlosrabelo/mirante/core/domain/entities"
	"github.com/carlosrabelo/mirante/core/infrastructure/config"
	"github.com/carlosrabelo/mirante/core/infrastructure/logging"
	"github.com/carlosrabelo/mirante/core/infrastructure/transport"
	"github.com/carlosrabelo/mirante/core/infrastructure/worker"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const (
	poolWorkers = 4
	poolQueue   = 16
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	var verbose bool

	root := &cobra.Command{
		Use:          "mirante",
		Short:        "Looking glass query executor for network devices",
		Version:      fmt.Sprintf("%s (built %s)", version, buildTime),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "config.yaml", "YAML configuration file")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logs")

	root.AddCommand(newQueryCmd(&configFile, &verbose))
	root.AddCommand(newLocationsCmd(&configFile))
	return root
}

func newQueryCmd(configFile *string, verbose *bool) *cobra.Command {
	var location, queryType, target string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run one diagnostic query against a configured device",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			log := logging.New(*verbose)

			pool := worker.NewPool(poolWorkers, poolQueue)
			pool.Start()
			defer pool.Stop()

			service := services.NewQueryService(
				cfg,
				services.NewBasicValidator(cfg.Messages),
				services.NewTemplateBuilder(),
				transport.Dial,
				pool,
				log,
			)

			result, err := service.Execute(cmd.Context(), entities.QueryRequest{
				Location: location,
				Type:     entities.QueryType(queryType),
				Target:   target,
			})
			if err != nil {
				return err
			}

			fmt.Println(result.Output)
			if result.Status != entities.StatusValid {
				return fmt.Errorf("query returned invalid status")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Device location identifier (required)")
	cmd.Flags().StringVar(&queryType, "type", "", "Query type: bgp_route, bgp_community, bgp_aspath, ping, traceroute (required)")
	cmd.Flags().StringVar(&target, "target", "", "Query target: address, prefix or expression (required)")
	cmd.MarkFlagRequired("location")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("target")
	return cmd
}

func newLocationsCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "locations",
		Short: "List configured device locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(cfg.Devices))
			for name := range cfg.Devices {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				device := cfg.Devices[name]
				fmt.Printf("%s\t%s\t%s\n", name, device.NOS, device.Address)
			}
			return nil
		},
	}
}
