package enum

type ConnectionType string

const (
	ConnectionTypeIMAP    ConnectionType = "IMAP"
	ConnectionTypeGmail   ConnectionType = "GMAIL"
	ConnectionTypeOutlook ConnectionType = "OUTLOOK"
)

func (c ConnectionType) String() string {
	return string(c)
}

func DecodeConnectionType(s string) (ConnectionType, bool) {
	switch ConnectionType(s) {
	case ConnectionTypeIMAP, ConnectionTypeGmail, ConnectionTypeOutlook:
		return ConnectionType(s), true
	default:
		return "", false
	}
}
