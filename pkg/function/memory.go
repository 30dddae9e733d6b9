package function

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/3s-rg-codes/function-proto/pkg/probe"
)

type MemoryPressureError struct {
	UsedPercent float64
	MaxPercent  float64
}

func (e *MemoryPressureError) Error() string {
	return fmt.Sprintf("memory usage %.1f%% exceeds %.1f%%", e.UsedPercent, e.MaxPercent)
}

// MemoryCheck fails while host memory usage is above maxPercent, taking the
// instance out of routing until usage drops.
func MemoryCheck(maxPercent float64) probe.HealthCheck {
	return memoryCheck(maxPercent, mem.VirtualMemoryWithContext)
}

func memoryCheck(maxPercent float64, read func(context.Context) (*mem.VirtualMemoryStat, error)) probe.HealthCheck {
	return func(ctx context.Context) error {
		vm, err := read(ctx)
		if err != nil {
			return fmt.Errorf("reading memory usage: %w", err)
		}
		if vm.UsedPercent > maxPercent {
			return &MemoryPressureError{UsedPercent: vm.UsedPercent, MaxPercent: maxPercent}
		}
		return nil
	}
}
