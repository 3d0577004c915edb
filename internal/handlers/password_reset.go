package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/annapurna/internal/errs"
	"github.com/example/annapurna/internal/recovery"
)

// PasswordResetHandler manages the OTP-gated forgot-password endpoints.
type PasswordResetHandler struct {
	controller *recovery.Controller
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(controller *recovery.Controller) *PasswordResetHandler {
	return &PasswordResetHandler{controller: controller}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a reset code for the account and emails it.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	if err := h.controller.RequestReset(req.Email); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		case errors.Is(err, errs.ErrRateLimited):
			return fiber.NewError(fiber.StatusTooManyRequests, "too many reset requests, try again later")
		case errors.Is(err, recovery.ErrDeliveryFailed):
			return fiber.NewError(fiber.StatusBadGateway, "failed to send reset code")
		case errs.IsValidation(err):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent to your email address",
	})
}

type verifyOTPResetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// VerifyOTPAndReset checks the submitted code and sets the new password.
func (h *PasswordResetHandler) VerifyOTPAndReset(c *fiber.Ctx) error {
	var req verifyOTPResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.controller.VerifyAndReset(req.Email, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidOrExpiredCode):
			return fiber.NewError(fiber.StatusBadRequest, "invalid or expired OTP")
		case errs.IsValidation(err):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password reset successful",
	})
}
