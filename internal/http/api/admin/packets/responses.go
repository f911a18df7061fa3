package packets

type ProfileResponse struct {
	ID        int     `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type SettingsResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	City      *string  `json:"city"`
	MethodID  int      `json:"method_id"`
	PlayAdhan bool     `json:"play_adhan"`
}

type TimetableResponse struct {
	Date      string            `json:"date"`
	HijriDate string            `json:"hijri_date,omitempty"`
	Timezone  string            `json:"timezone"`
	MethodID  int               `json:"method_id"`
	Times     map[string]string `json:"times"`
}

type NextPrayerResponse struct {
	Prayer    string `json:"prayer"`
	At        string `json:"at"` // RFC3339
	Countdown string `json:"countdown"`
}

type AdhanPreferenceResponse struct {
	Prayer string `json:"prayer"`
	Sound  string `json:"sound"`
}

type ReminderPreferenceResponse struct {
	Prayer        string `json:"prayer"`
	OffsetMinutes int    `json:"offset_minutes"`
}

type NotificationResponse struct {
	Handle string `json:"handle"`
	Prayer string `json:"prayer"`
	Kind   string `json:"kind"`
	Day    string `json:"day"`
	FireAt string `json:"fire_at"`
	Sound  string `json:"sound"`
	Silent bool   `json:"silent"`
	Status string `json:"status"`
}

type ScheduleResultResponse struct {
	Scheduled int      `json:"scheduled"`
	Failed    []string `json:"failed,omitempty"`
}

type DeviceResponse struct {
	ID        int     `json:"id"`
	DeviceID  string  `json:"device_id"`
	Name      *string `json:"name"`
	CreatedAt string  `json:"created_at"`
}

type SoundUploadResponse struct {
	URL string `json:"url"`
}
