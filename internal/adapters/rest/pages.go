package rest

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"big4-auction-service/internal/ports/inbound"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

type loginBody struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type registrationBody struct {
	FullName    string  `json:"full_name" form:"full_name" binding:"required"`
	Address     *string `json:"address" form:"address"`
	PhoneNumber string  `json:"phone_number" form:"phone_number" binding:"required"`
}

func wantsJSON(c *gin.Context) bool {
	return c.ContentType() == binding.MIMEJSON
}

// RegisterCardPage serves the card registration page. The page script
// sends user_id back as X-User-ID when it requests a setup intent.
func (h *Handler) RegisterCardPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register_card.html", gin.H{
		"UserID":          c.Query("user_id"),
		"PaymentsEnabled": h.services.Payments.PublishableKey() != "",
	})
}

func (h *Handler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// Login accepts a form post from the login page or a JSON body
func (h *Handler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBind(&body); err != nil {
		if wantsJSON(c) {
			h.handleBindError(c, "Login", err)
			return
		}
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"Error": "Email and password are required", "Email": body.Email})
		return
	}

	user, err := h.services.Accounts.Authenticate(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		if wantsJSON(c) {
			h.writeError(c, "Login", err)
			return
		}
		status, message := MapErrorToHTTP(err)
		c.HTML(status, "login.html", gin.H{"Error": message, "Email": body.Email})
		return
	}

	if wantsJSON(c) {
		JSONResponse(c, http.StatusOK, user, "logged in")
		return
	}
	c.Redirect(http.StatusSeeOther, "/register-card?user_id="+url.QueryEscape(user.ID.String()))
}

// RegistrationPage shows the profile form for the user that owns customer_id
func (h *Handler) RegistrationPage(c *gin.Context) {
	customerID := c.Param("customer_id")
	user, err := h.services.Accounts.GetUserByCustomer(c.Request.Context(), customerID)
	if err != nil {
		status, message := MapErrorToHTTP(err)
		c.HTML(status, "registration.html", gin.H{"CustomerID": customerID, "Error": message})
		return
	}
	c.HTML(http.StatusOK, "registration.html", gin.H{"CustomerID": customerID, "User": user})
}

// CompleteRegistration stores the profile fields for customer_id
func (h *Handler) CompleteRegistration(c *gin.Context) {
	customerID := c.Param("customer_id")

	var body registrationBody
	if err := c.ShouldBind(&body); err != nil {
		if wantsJSON(c) {
			h.handleBindError(c, "CompleteRegistration", err)
			return
		}
		c.HTML(http.StatusBadRequest, "registration.html", gin.H{"CustomerID": customerID, "Error": "Full name and phone number are required"})
		return
	}
	if body.Address != nil && strings.TrimSpace(*body.Address) == "" {
		body.Address = nil
	}

	user, err := h.services.Accounts.CompleteRegistration(c.Request.Context(), inbound.CompleteRegistrationRequest{
		CustomerID:  customerID,
		FullName:    body.FullName,
		Address:     body.Address,
		PhoneNumber: body.PhoneNumber,
	})
	if err != nil {
		if wantsJSON(c) {
			h.writeError(c, "CompleteRegistration", err)
			return
		}
		status, message := MapErrorToHTTP(err)
		c.HTML(status, "registration.html", gin.H{"CustomerID": customerID, "Error": message})
		return
	}

	if wantsJSON(c) {
		JSONResponse(c, http.StatusOK, user, "registration complete")
		return
	}
	c.HTML(http.StatusOK, "registration.html", gin.H{"CustomerID": customerID, "User": user, "Done": true})
}
