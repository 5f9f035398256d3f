package cli

import "time"

type Options struct {
	APIBaseURL  string
	SessionFile string
	Timeout     time.Duration
	PageSize    int
	Path        string
	JSON        bool
}
