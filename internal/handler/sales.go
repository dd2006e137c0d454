package handler

import (
	"net/http"

	"inventorypos/internal/dto"
	"inventorypos/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	svc      service.SaleService
	payments service.PaymentService
}

func NewSalesHandler(svc service.SaleService, payments service.PaymentService) *SalesHandler {
	return &SalesHandler{svc: svc, payments: payments}
}

// ProcessSale godoc
// @Summary      Process a sale
// @Description  Validates the cart, decrements stock, writes the sale with its items and optional first payment in one transaction.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ProcessSaleRequest true "Cart and customer"
// @Success      201  {object} dto.ProcessSaleResponse
// @Failure      400  {object} apierror.Failure
// @Failure      404  {object} apierror.Failure
// @Failure      409  {object} apierror.Failure
// @Router       /v1/sales [post]
func (h *SalesHandler) ProcessSale(c *gin.Context) {
	var req dto.ProcessSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ProcessSale(c.Request.Context(), actor, req)
	if err != nil {
		failure(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetSale godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Sale id"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, ok := parseSaleID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateReceipt godoc
// @Summary      Edit the customer details printed on a receipt
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                      true "Sale id"
// @Param        body body dto.UpdateReceiptRequest true "Customer fields"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id}/receipt [patch]
func (h *SalesHandler) UpdateReceipt(c *gin.Context) {
	id, ok := parseSaleID(c)
	if !ok {
		return
	}
	var req dto.UpdateReceiptRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateReceipt(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReceiptPDF godoc
// @Summary      Download the PDF receipt of a sale
// @Tags         sales
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path int true "Sale id"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id}/receipt.pdf [get]
func (h *SalesHandler) ReceiptPDF(c *gin.Context) {
	id, ok := parseSaleID(c)
	if !ok {
		return
	}
	data, name, err := h.svc.ReceiptPDF(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// ListDebtors godoc
// @Summary      List sales with an outstanding balance
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        customer query string false "Customer name or phone"
// @Param        page     query int    false "Page"
// @Param        limit    query int    false "Page size"
// @Success      200 {object} dto.DebtorListResponse
// @Router       /v1/debtors [get]
func (h *SalesHandler) ListDebtors(c *gin.Context) {
	var filter dto.DebtorFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListDebtors(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordPayment godoc
// @Summary      Record a payment against a sale
// @Description  Locks the sale, rejects overpayment and recomputes the balance and payment status.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                true "Sale id"
// @Param        body body dto.PaymentRequest true "Payment"
// @Success      201 {object} dto.RecordPaymentResponse
// @Failure      400 {object} apierror.Failure
// @Failure      404 {object} apierror.Failure
// @Router       /v1/sales/{id}/payments [post]
func (h *SalesHandler) RecordPayment(c *gin.Context) {
	id, ok := parseSaleID(c)
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorID(c)
	if !ok {
		return
	}
	resp, err := h.payments.RecordPayment(c.Request.Context(), actor, id, req)
	if err != nil {
		failure(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PaymentHistory godoc
// @Summary      List the payments of a sale, newest first
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Sale id"
// @Success      200 {array}  dto.PaymentResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/sales/{id}/payments [get]
func (h *SalesHandler) PaymentHistory(c *gin.Context) {
	id, ok := parseSaleID(c)
	if !ok {
		return
	}
	resp, err := h.payments.PaymentHistory(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
