package dto

type AnonymousAuthRequest struct {
	ClientId string `json:"client_id"`
}

type AnonymousAuthResponse struct {
	UserId string `json:"user_id"`
	Token  string `json:"token"`
}
