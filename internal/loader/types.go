package loader

// Layer identifies one of the configuration sources in precedence order.
type Layer int

const (
	LayerDefault Layer = iota
	LayerUser
	LayerForced
)

func (l Layer) String() string {
	switch l {
	case LayerDefault:
		return "default"
	case LayerUser:
		return "user"
	case LayerForced:
		return "forced"
	default:
		return "unknown"
	}
}
