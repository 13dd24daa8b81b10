package middleware

import (
	"errors"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
)

var _ = Describe("StatusFor", func() {
	DescribeTable("maps errors to statuses and codes",
		func(err error, status int, code dto.ErrorCode) {
			gotStatus, gotCode, _ := StatusFor(err)
			Expect(gotStatus).To(Equal(status))
			Expect(gotCode).To(Equal(code))
		},
		Entry("validation", apperrors.NewValidationError("bad", nil), http.StatusBadRequest, dto.ErrorCodeValidationFailed),
		Entry("malformed id", apperrors.NewInvalidIdentifierError("x"), http.StatusBadRequest, dto.ErrorCodeResourceInvalid),
		Entry("not found", apperrors.NewResourceNotFoundError("gone"), http.StatusNotFound, dto.ErrorCodeResourceNotFound),
		Entry("forbidden", apperrors.NewForbiddenError("no"), http.StatusForbidden, dto.ErrorCodeForbidden),
		Entry("conflict", apperrors.NewConflictError("dup"), http.StatusConflict, dto.ErrorCodeResourceAlreadyExists),
		Entry("credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials),
		Entry("wrapped expiry", fmt.Errorf("auth: %w", apperrors.ErrTokenExpired), http.StatusUnauthorized, dto.ErrorCodeExpiredToken),
		Entry("external", apperrors.NewExternalServiceError("s3", nil), http.StatusBadGateway, dto.ErrorCodeExternalServiceError),
		Entry("unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer),
	)
})
