package yl

// Config collects the knobs the CLI (cmd/yl) exposes over the
// compiler and VM: GC stress testing, GC stats, bytecode dumping, and
// the module search path used by the import resolver (module.go).
// HeapInitBytes is not read by the VM or the heap: the first
// collection threshold is always HeapInitBytesMax.
type Config struct {
	GCStress      bool
	GCStats       bool
	DumpBytecode  bool
	HeapInitBytes int
	ModulePaths   []string
}

// NewConfig returns a Config primed with the defaults described in
// §4.1 and §6.
func NewConfig() *Config {
	return &Config{
		HeapInitBytes: HeapInitBytesMax,
		ModulePaths:   []string{"."},
	}
}
