package chat

// BannerView displays the transient notification banner.
type BannerView interface {
	ShowBanner(text string)
	HideBanner()
}

// View is the rendering target shared by the dispatcher and the listener.
// Implementations must be safe for use from multiple goroutines and must
// render entry text as text (see Sanitize).
type View interface {
	BannerView

	// ClearInput empties the input field.
	ClearInput()

	// AppendEntry renders a new transcript entry.
	AppendEntry(e Entry)

	// ScrollToLatest scrolls the transcript to its newest entry.
	ScrollToLatest()
}
