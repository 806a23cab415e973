package benchmarks

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"runtime/pprof"

	"github.com/zeu5/gate-synth-rl/util"
)

var (
	cpuprofile string
	memprofile string
)

// withProfiling runs f under the CPU profiler and writes a heap profile
// afterwards, when the corresponding flags are set
func withProfiling(f func() error) error {
	if cpuprofile != "" || memprofile != "" {
		if err := util.EnsureDir(saveFile); err != nil {
			return err
		}
	}
	if cpuprofile != "" {
		cpuProfPath := path.Join(saveFile, cpuprofile)
		fmt.Println("Profiling CPU to ", cpuProfPath)
		cf, err := os.Create(cpuProfPath)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer cf.Close()
		if err := pprof.StartCPUProfile(cf); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := f(); err != nil {
		return err
	}

	if memprofile != "" {
		memProfPath := path.Join(saveFile, memprofile)
		fmt.Println("Profiling Memory to ", memProfPath)
		mf, err := os.Create(memProfPath)
		if err != nil {
			return fmt.Errorf("could not create memory profile: %w", err)
		}
		defer mf.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(mf); err != nil {
			return fmt.Errorf("could not write memory profile: %w", err)
		}
	}
	return nil
}
