package packets

type RegisterPairingCodeRequest struct {
	DeviceID    string `json:"device_id" binding:"required"`
	PairingCode string `json:"pairing_code" binding:"required"`
}

type PairStatusResponse struct {
	Paired bool `json:"paired"`
}
