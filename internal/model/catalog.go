package model

// NoticeKind classifies a user-facing message produced by a catalogue load.
type NoticeKind string

const (
	NoticeNone                 NoticeKind = ""
	NoticeShowingCached        NoticeKind = "showing_cached"
	NoticeNoData               NoticeKind = "no_data"
	NoticeOfflineEmpty         NoticeKind = "offline_empty"
	NoticeNetworkShowingCached NoticeKind = "network_showing_cached"
)

// Notice is a recoverable condition surfaced to the presentation layer.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Notices shown to the user, keyed by kind.
var noticeMessages = map[NoticeKind]string{
	NoticeShowingCached:        "Unable to fetch latest data. Showing cached products.",
	NoticeNoData:               "Unable to load products. Please check your internet connection.",
	NoticeOfflineEmpty:         "No cached products available. Please connect to the internet to load products.",
	NoticeNetworkShowingCached: "Network error. Showing cached products.",
}

// NewNotice builds a notice with the standard message for its kind.
func NewNotice(kind NoticeKind) *Notice {
	if kind == NoticeNone {
		return nil
	}
	return &Notice{Kind: kind, Message: noticeMessages[kind]}
}

// CatalogView is the display-ready state of the catalogue synchroniser.
type CatalogView struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Cursor   int       `json:"cursor"`
	Online   bool      `json:"online"`
	Loading  bool      `json:"loading"`
	Notice   *Notice   `json:"notice,omitempty"`
}

// HasMore reports whether another page can be requested.
func (v CatalogView) HasMore() bool {
	return len(v.Products) > 0 && len(v.Products) < v.Total
}
