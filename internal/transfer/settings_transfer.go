package transfer

type UpdateSettingsRequest struct {
	DailyLimit    *int  `json:"dailyLimit"`
	PublishHour   *int  `json:"publishHour"`
	PublishMinute *int  `json:"publishMinute"`
	Enabled       *bool `json:"enabled"`
}
