package dto

type AssistantRequest struct {
	Message string `json:"message" validate:"required"`
}

type AssistantResponse struct {
	Reply string `json:"reply"`
}
