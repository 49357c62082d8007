package handlers

import (
	"github.com/rajesh096/InsightVerify/internal/service/verification"
	"github.com/rajesh096/InsightVerify/pkg/logger"
)

type Handlers struct {
	Verification *VerificationHandler
}

func NewHandlers(svc verification.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Verification: NewVerificationHandler(svc, log),
	}
}
