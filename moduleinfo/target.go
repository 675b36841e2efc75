package moduleinfo

// PointerWidth is the size of a native pointer on the compilation target.
type PointerWidth uint8

const (
	PointerWidth32 PointerWidth = 4
	PointerWidth64 PointerWidth = 8
)

// Bits returns the pointer width in bits.
func (w PointerWidth) Bits() int { return int(w) * 8 }

// CallConv is the native calling convention of the compilation target.
type CallConv uint8

const (
	CallConvSystemV CallConv = iota
	CallConvWindowsFastcall
	CallConvAppleAarch64
)

func (c CallConv) String() string {
	switch c {
	case CallConvSystemV:
		return "system_v"
	case CallConvWindowsFastcall:
		return "windows_fastcall"
	case CallConvAppleAarch64:
		return "apple_aarch64"
	default:
		return "unknown"
	}
}

// TargetConfig describes the target of a compilation, as needed by the
// stages that translate function bodies.
type TargetConfig struct {
	PointerWidth PointerWidth
	CallConv     CallConv
}

// DefaultTargetConfig returns a 64-bit System V target.
func DefaultTargetConfig() TargetConfig {
	return TargetConfig{
		PointerWidth: PointerWidth64,
		CallConv:     CallConvSystemV,
	}
}
