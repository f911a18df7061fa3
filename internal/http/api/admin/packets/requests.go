package packets

type SignupRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     *string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateCurrentProfileRequest struct {
	Email string  `json:"email" binding:"required,email"`
	Name  *string `json:"name"`
}

type UpdateSettingsRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	City      *string  `json:"city"`
	MethodID  int      `json:"method_id"`
	PlayAdhan *bool    `json:"play_adhan" binding:"required"`
}

type SetAdhanPreferenceRequest struct {
	Sound string `json:"sound" binding:"required"`
}

// OffsetMinutes zero clears the reminder, so no required binding.
type SetReminderPreferenceRequest struct {
	OffsetMinutes int `json:"offset_minutes"`
}

type TimesQuery struct {
	Date string `form:"date"` // yyyy-mm-dd, defaults to today
}

type ClaimDeviceRequest struct {
	Code string  `json:"code" binding:"required"`
	Name *string `json:"name"`
}
