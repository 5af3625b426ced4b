package models

// Permission mirrors the platform notification permission outcome.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// NotificationPreferences are the alerts a user opted into.
type NotificationPreferences struct {
	NearbyRequests   bool     `json:"nearby_requests"`
	MyRequestUpdates bool     `json:"my_request_updates"`
	Marketing        bool     `json:"marketing"`
	Categories       []string `json:"categories"`
}

func DefaultPreferences() NotificationPreferences {
	return NotificationPreferences{
		NearbyRequests:   true,
		MyRequestUpdates: true,
		Marketing:        false,
		Categories:       []string{},
	}
}

// PreferencesPatch is a partial update; nil fields keep their current value.
// A non-nil Categories replaces the whole set.
type PreferencesPatch struct {
	NearbyRequests   *bool    `json:"nearby_requests"`
	MyRequestUpdates *bool    `json:"my_request_updates"`
	Marketing        *bool    `json:"marketing"`
	Categories       []string `json:"categories"`
}

// Apply returns p merged with patch.
func (p NotificationPreferences) Apply(patch PreferencesPatch) NotificationPreferences {
	out := p
	if patch.NearbyRequests != nil {
		out.NearbyRequests = *patch.NearbyRequests
	}
	if patch.MyRequestUpdates != nil {
		out.MyRequestUpdates = *patch.MyRequestUpdates
	}
	if patch.Marketing != nil {
		out.Marketing = *patch.Marketing
	}
	if patch.Categories != nil {
		out.Categories = uniqueStrings(patch.Categories)
	} else {
		out.Categories = uniqueStrings(p.Categories)
	}
	return out
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
