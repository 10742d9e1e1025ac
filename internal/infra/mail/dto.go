package mail

type notificationData struct {
	Subject   string
	Timestamp string
	Lines     []string
}
