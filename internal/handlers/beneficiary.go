package handlers

import (
	"net/http"

	"github.com/nkiryanov/bankledger/internal/handlers/render"
	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/service/beneficiary"
)

func handleListBeneficiaries(beneficiaries beneficiaryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		list, err := beneficiaries.List(r.Context(), actor)
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, list)
	})
}

func handleCreateBeneficiary(beneficiaries beneficiaryService, l logger.Logger) http.Handler {
	type request struct {
		Name          string `json:"name" validate:"required,max=200"`
		BankName      string `json:"bank_name" validate:"max=200"`
		AccountNumber string `json:"account_number" validate:"required,max=34"`
		RoutingNumber string `json:"routing_number" validate:"omitempty,digits,max=20"`
		SwiftCode     string `json:"swift_code" validate:"omitempty,alphanum,min=8,max=11"`
		Type          string `json:"beneficiary_type" validate:"omitempty,oneof=internal external"`
		Otp           string `json:"otp" validate:"required,len=6,digits"`
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

		bType := models.BeneficiaryTypeExternal
		if data.Type != "" {
			bType = models.BeneficiaryType(data.Type)
		}

		b, err := beneficiaries.Create(r.Context(), actor, beneficiary.CreateInput{
			Name:          data.Name,
			BankName:      data.BankName,
			AccountNumber: data.AccountNumber,
			RoutingNumber: data.RoutingNumber,
			SwiftCode:     data.SwiftCode,
			Type:          bType,
			OtpCode:       data.Otp,
		})
		if err != nil {
			renderError(w, l, err)
			return
		}

		render.JSONWithStatus(w, b, http.StatusCreated)
	})
}

func handleDeleteBeneficiary(beneficiaries beneficiaryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}

		if err := beneficiaries.Delete(r.Context(), actor, id); err != nil {
			renderError(w, l, err)
			return
		}

		render.JSON(w, messageResponse{Message: "Beneficiary deleted"})
	})
}
