package feed

import "github.com/CrestNiraj12/giggles/domain"

// pager is the list surface the tracker scrolls. Pages are drawn from the
// tracker offset, so scrolling only needs the surface to be measured.
type pager struct {
	rows int
}

// ScrollToIndex fails until the first window size arrives.
func (p *pager) ScrollToIndex(index int, animated bool) error {
	if p.rows <= 0 {
		return domain.ErrViewNotMeasured
	}
	return nil
}
