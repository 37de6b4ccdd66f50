package module

import "contestwatch/internal/services/contest/domain"

// Ports is the contest port bundle
type Ports struct {
	Monitor domain.MonitorPort
	Feed    domain.EventFeedPort
	Waiter  domain.WaitPort
}
