package analyzer

import (
	"fmt"
	"sort"
	"sync"

	"leafdoc/internal/config"
	"leafdoc/internal/port"
)

// ProviderFactory creates a VisionModel from the analyzer config.
type ProviderFactory func(cfg *config.AnalyzerConfig) (port.VisionModel, error)

var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider registers a vision model provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewVisionModel creates a VisionModel using the factory registered for cfg.Provider.
func NewVisionModel(cfg *config.AnalyzerConfig) (port.VisionModel, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown analyzer provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
