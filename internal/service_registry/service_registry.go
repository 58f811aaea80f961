package service_registry

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/benmeehan/relay-agent/internal/constants"
	"github.com/benmeehan/relay-agent/internal/debounce"
	"github.com/benmeehan/relay-agent/internal/registry"
	"github.com/benmeehan/relay-agent/internal/services"
	"github.com/benmeehan/relay-agent/internal/utils"
	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

// ServiceRegistry manages the lifecycle of various services in the system.
type ServiceRegistry struct {
	services    map[string]registry.Service // Stores registered services
	serviceKeys []string                    // Maintains order of service registration
	publisher   services.Publisher
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes a new service registry with dependencies.
func NewServiceRegistry(publisher services.Publisher, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:  make(map[string]registry.Service),
		publisher: publisher,
		Logger:    logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc registry.Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// Service returns the registered service with the given name.
func (sr *ServiceRegistry) Service(name string) (registry.Service, bool) {
	svc, ok := sr.services[name]
	return svc, ok
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			// Stop already started services before returning
			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// Subscriptions merges the topics of every registered service. When two
// services share a topic the higher QoS wins.
func (sr *ServiceRegistry) Subscriptions() map[string]byte {
	merged := make(map[string]byte)
	for _, name := range sr.serviceKeys {
		for topic, qos := range sr.services[name].Subscriptions() {
			if current, ok := merged[topic]; !ok || qos > current {
				merged[topic] = qos
			}
		}
	}
	return merged
}

// Dispatch offers msg to each service in registration order and reports
// whether any of them handled it.
func (sr *ServiceRegistry) Dispatch(msg mqtt.Message) bool {
	for _, name := range sr.serviceKeys {
		if sr.services[name].HandleMessage(msg) {
			return true
		}
	}
	return false
}

// RegisterServices initializes and registers enabled services based on configuration.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, debouncer *debounce.Debouncer) error {
	// Ordered service definitions with inline constructors
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (registry.Service, error)
	}{
		{
			name:    services.ButtonServiceName,
			enabled: config.Services.Button.Enabled,
			constructor: func() (registry.Service, error) {
				if debouncer == nil {
					return nil, errors.New("button service requires a debouncer")
				}
				return services.NewButtonService(
					config.Topics.Button,
					constants.ButtonQOS,
					debouncer,
					sr.publisher,
					sr.Logger,
				), nil
			},
		},
		{
			name:    services.DoorServiceName,
			enabled: config.Services.Door.Enabled,
			constructor: func() (registry.Service, error) {
				return services.NewDoorService(
					config.Topics.DoorState,
					constants.DoorStateQOS,
					sr.Logger,
				), nil
			},
		},
	}

	// Register services in the predefined order
	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if svc.enabled {
			serviceInstance, err := svc.constructor()
			if err != nil {
				sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
				return err
			}
			sr.RegisterService(svc.name, serviceInstance)
			registeredServices = append(registeredServices, svc.name)
		}
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}
