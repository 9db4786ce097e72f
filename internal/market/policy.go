package market

// RefreshPolicy sizes upstream quote batches by session phase: poll hardest
// while the market is open, smallest overnight.
type RefreshPolicy struct{}

// BatchSize returns how many symbols to request per upstream call.
func (RefreshPolicy) BatchSize(phase Phase) int {
	switch phase {
	case PhaseRegular:
		return 60
	case PhasePre, PhaseAfter:
		return 40
	default:
		return 10
	}
}
