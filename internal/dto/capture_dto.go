package dto

import "plant-journal-be/internal/capture"

type StartCaptureResponse struct {
	SessionId string               `json:"session_id"`
	State     CaptureStateResponse `json:"state"`
}

type CaptureStateResponse struct {
	Status      string  `json:"status"` // idle | processing | success | error | cancelled
	Stage       string  `json:"stage,omitempty"`
	Progress    float64 `json:"progress,omitempty"`
	Message     string  `json:"message,omitempty"`
	DiscoveryId string  `json:"discovery_id,omitempty"`
}

func NewCaptureStateResponse(st capture.State) CaptureStateResponse {
	switch s := st.(type) {
	case capture.Processing:
		return CaptureStateResponse{Status: "processing", Stage: s.Stage, Progress: s.Progress}
	case capture.Success:
		return CaptureStateResponse{Status: "success", Progress: 1.0, DiscoveryId: s.DiscoveryId.String()}
	case capture.Failed:
		return CaptureStateResponse{Status: "error", Message: s.Message}
	case capture.Cancelled:
		return CaptureStateResponse{Status: "cancelled"}
	default:
		return CaptureStateResponse{Status: "idle"}
	}
}
