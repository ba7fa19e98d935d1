package app

const (
	unknownUserName   = "unknown"
	unknownProtocolID = "N/A"
)

type SessionReport struct {
	Identifier string `json:"identifier"`
	Connected  bool   `json:"connected"`
	Healthy    bool   `json:"healthy"`
	UserName   string `json:"user"`
	ProtocolID string `json:"jid"`
	Status     string `json:"status"`
	LastError  string `json:"last_error,omitempty"`
}

type Report struct {
	Total    int             `json:"total"`
	Healthy  int             `json:"healthy"`
	Sessions []SessionReport `json:"sessions"`
}

// Reporter projects the registry for the status endpoint.
type Reporter struct {
	sessions Sessions
}

func NewReporter(sessions Sessions) *Reporter {
	return &Reporter{sessions: sessions}
}

func (r *Reporter) Report() Report {
	list := r.sessions.List()
	report := Report{Total: len(list), Sessions: make([]SessionReport, 0, len(list))}

	for _, s := range list {
		if s.Healthy {
			report.Healthy++
		}
		identity := s.ResolvedIdentity()
		entry := SessionReport{
			Identifier: s.ID,
			Connected:  s.Healthy && s.Live(),
			Healthy:    s.Healthy,
			UserName:   identity.DisplayName,
			ProtocolID: identity.ProtocolID,
			Status:     string(s.Status),
			LastError:  s.LastError,
		}
		if entry.UserName == "" {
			entry.UserName = unknownUserName
		}
		if entry.ProtocolID == "" {
			entry.ProtocolID = unknownProtocolID
		}
		report.Sessions = append(report.Sessions, entry)
	}
	return report
}
