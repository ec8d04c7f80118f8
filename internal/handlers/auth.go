package handlers

import (
	"net/http"
	"time"

	"github.com/nkiryanov/bankledger/internal/handlers/render"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/service/user"
)

type messageResponse struct {
	Message string `json:"message"`
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"max=50"`
	Address   string `json:"address" validate:"max=500"`
	Country   string `json:"country" validate:"max=100"`
	UserType  string `json:"user_type" validate:"omitempty,oneof=personal business"`
}

func (r registerRequest) input() user.RegisterInput {
	return user.RegisterInput{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Address:   r.Address,
		Country:   r.Country,
		UserType:  models.UserType(r.UserType),
	}
}

func handleRegister(users userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[registerRequest](w, r)
		if err != nil {
			return
		}

		u, err := users.Register(r.Context(), data.input())
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, u, http.StatusCreated)
	})
}

func handleLogin(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		Message     string `json:"message"`
		RequiresOtp bool   `json:"requires_otp"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		if err := auth.Login(r.Context(), data.Email, data.Password); err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, response{Message: "OTP sent to your email", RequiresOtp: true})
	})
}

func handleVerifyOtp(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Email string `json:"email" validate:"required,email"`
		Otp   string `json:"otp" validate:"required,len=6,digits"`
	}
	type response struct {
		Token     string      `json:"token"`
		ExpiresAt time.Time   `json:"expires_at"`
		User      models.User `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		token, u, err := auth.VerifyLogin(r.Context(), data.Email, data.Otp)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, response{Token: token.Value, ExpiresAt: token.ExpiresAt, User: u})
	})
}

func handleRequestOtp(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Purpose string `json:"purpose" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		purpose, err := models.ParseOtpPurpose(data.Purpose)
		if err != nil {
			renderError(w, l, err)
			return
		}

		if err := auth.RequestOtp(r.Context(), actor, purpose); err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, messageResponse{Message: "OTP sent successfully"})
	})
}

func handleMe(users userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		u, err := users.Me(r.Context(), actor)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, u)
	})
}
