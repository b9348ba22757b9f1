package styles

var (
	IconNotifySuccess = "✔"
	IconNotifyError   = "✘"
	IconNotifyWarning = "⚠"
	IconUpload        = "↑"
	IconImage         = "▣"
)
