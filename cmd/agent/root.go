package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/benmeehan/relay-agent/internal/actuator"
	"github.com/benmeehan/relay-agent/internal/constants"
	"github.com/benmeehan/relay-agent/internal/debounce"
	"github.com/benmeehan/relay-agent/internal/engine"
	"github.com/benmeehan/relay-agent/internal/liveness"
	"github.com/benmeehan/relay-agent/internal/service_registry"
	"github.com/benmeehan/relay-agent/internal/shutdown"
	"github.com/benmeehan/relay-agent/internal/utils"
	"github.com/benmeehan/relay-agent/pkg/file"
	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

var (
	configFile string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "relay-agent",
	Short: "Garage door relay agent",
	Long:  `Bridges a garage door relay to an MQTT broker: presses on the button topic pulse the relay, and the status topic tracks whether the agent is online.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runAgent(cmd.Flags().Changed("config")))
	},
}

var defaultsCmd = &cobra.Command{
	Use:   "defaults <file>",
	Short: "Write the built-in configuration to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return file.NewFileService().WriteYamlFile(args[0], utils.DefaultConfig(debugMode))
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "use the debug client id and topics and log verbosely")
	rootCmd.Flags().StringVar(&configFile, "config", constants.DefaultConfigFile, "path to the YAML configuration file")
	rootCmd.AddCommand(defaultsCmd)
}

// runAgent wires the agent together and returns the process exit status.
func runAgent(configRequired bool) int {
	fileClient := file.NewFileService()

	config, err := utils.LoadConfig(configFile, configRequired, debugMode, fileClient)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return constants.ExitConnectFailure
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return constants.ExitConnectFailure
	}

	log, err := utils.NewLogger(config.Logging.Level, config.Logging.Format, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return constants.ExitConnectFailure
	}

	log.Info().Msgf("Running %s build, version: %s", runtime.GOARCH, utils.BuildVersion(version))

	if config.MQTT.UniqueClientID {
		// Generate a unique MQTT Client ID by appending a UUID
		config.MQTT.ClientID = config.MQTT.ClientID + "-" + uuid.New().String()
	}
	log.Info().Str("client_id", config.MQTT.ClientID).Str("broker", config.MQTT.Broker).Msg("Using MQTT client")

	relay := actuator.DefaultDetector().Detect(config.Actuator.Pin, config.Actuator.Pulse, log)
	defer relay.Close()

	status := liveness.NewProtocol(config.Topics.Status)
	mqttClient := mqtt.NewMqttService(config.ConnectionConfig(status.Will()), log)

	serviceRegistry := service_registry.NewServiceRegistry(mqttClient, log)
	debouncer := debounce.New(config.Actuator.Debounce, relay, log)
	if err := serviceRegistry.RegisterServices(config, debouncer); err != nil {
		log.Error().Err(err).Msg("Failed to register services")
		return constants.ExitConnectFailure
	}

	flag := shutdown.NewFlag()
	coordinator := shutdown.NewCoordinator(flag, mqttClient, status.OfflineMessage(), config.Shutdown.DisconnectTimeout, log)
	coordinator.Listen(os.Interrupt, syscall.SIGTERM)

	agent := engine.New(mqttClient, serviceRegistry, status, flag, engine.Options{
		MaxAttempts:       config.Reconnect.MaxAttempts,
		ReconnectDelay:    config.Reconnect.Delay,
		DisconnectTimeout: config.Shutdown.DisconnectTimeout,
	}, log)

	err = agent.Run(context.Background())
	if flag.IsSet() {
		// The coordinator owns the exit once a signal has been received.
		coordinator.Wait()
		return constants.ExitOK
	}

	code := engine.ExitCode(err)
	if err != nil {
		log.Error().Err(err).Int("exit_code", code).Msg("Agent stopped")
	}
	return code
}
