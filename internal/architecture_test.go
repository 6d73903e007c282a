package internal

import (
	"testing"

	"github.com/kcmvp/archunit"
)

func TestArchitecture(t *testing.T) {
	domain := archunit.Packages("domain", []string{".../internal/core/domain/...", ".../internal/core/port/..."})
	service := archunit.Packages("service", []string{".../internal/core/service/..."})
	adapters := archunit.Packages("adapters", []string{".../internal/adapter/..."})
	outer := archunit.Packages("outer", []string{".../internal/mqtt/...", ".../internal/server/...", ".../internal/cli/..."})

	// Rule 1: Domain should not depend on adapters or transports
	if err := domain.ShouldNotReferLayers(adapters, outer); err != nil {
		t.Errorf("Architecture violation: Domain depends on Adapters: %v", err)
	}

	// Rule 2: Services only see the domain and its ports
	if err := service.ShouldNotReferLayers(adapters, outer); err != nil {
		t.Errorf("Architecture violation: Service depends on Adapters: %v", err)
	}
}

func TestPublicPackages(t *testing.T) {
	public := archunit.Packages("public", []string{".../pkg/..."})
	if len(public.Packages()) == 0 {
		t.Fatal("No public packages found")
	}
	internals := archunit.Packages("internal", []string{".../internal/..."})
	if err := public.ShouldNotReferLayers(internals); err != nil {
		t.Errorf("Architecture violation: pkg depends on internal: %v", err)
	}
}
