package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	auditServices "github.com/Adagu69/calendario-medico-sub000/internal/audit/services"
	"github.com/Adagu69/calendario-medico-sub000/internal/common/middlewares"
	"github.com/Adagu69/calendario-medico-sub000/internal/personal/services"
	"github.com/Adagu69/calendario-medico-sub000/pkg/logger"
	"github.com/Adagu69/calendario-medico-sub000/pkg/utils"
)

type UserController struct {
	Service *services.UserService
	Audit   *auditServices.AuditService
}

func NewUserController(service *services.UserService, audit *auditServices.AuditService) *UserController {
	return &UserController{Service: service, Audit: audit}
}

var validRoles = map[string]bool{
	middlewares.RoleAdmin:       true,
	middlewares.RoleSectionHead: true,
	middlewares.RoleUser:        true,
}

type userRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	SectionID *int   `json:"section_id"`
	IsActive  *bool  `json:"is_active"`
}

func (r userRequest) validate(requirePassword bool) []utils.FieldError {
	var errs []utils.FieldError
	if r.Username == "" {
		errs = append(errs, utils.FieldError{Field: "username", Message: "es obligatorio"})
	}
	if r.Email == "" {
		errs = append(errs, utils.FieldError{Field: "email", Message: "es obligatorio"})
	}
	if requirePassword && r.Password == "" {
		errs = append(errs, utils.FieldError{Field: "password", Message: "es obligatorio"})
	}
	if r.FullName == "" {
		errs = append(errs, utils.FieldError{Field: "full_name", Message: "es obligatorio"})
	}
	if !validRoles[r.Role] {
		errs = append(errs, utils.FieldError{Field: "role", Message: "debe ser admin, jefe_servicio o usuario"})
	}
	if r.Role == middlewares.RoleSectionHead && r.SectionID == nil {
		errs = append(errs, utils.FieldError{Field: "section_id", Message: "es obligatorio para jefe_servicio"})
	}
	return errs
}

func (uc *UserController) ListHandler(c echo.Context) error {
	users, err := uc.Service.List(c.QueryParam("include_inactive") == "true")
	if err != nil {
		return internalError(c, err, "listando usuarios")
	}
	return utils.RespondData(c, http.StatusOK, users)
}

func (uc *UserController) GetHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	user, err := uc.Service.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Usuario no encontrado")
		}
		return internalError(c, err, "consultando usuario")
	}
	return utils.RespondData(c, http.StatusOK, user)
}

func (uc *UserController) CreateHandler(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if errs := req.validate(true); len(errs) > 0 {
		return utils.RespondValidation(c, errs)
	}

	user, err := uc.Service.Create(services.UserInput{
		Username: req.Username, Email: req.Email, Password: req.Password,
		FullName: req.FullName, Role: req.Role, SectionID: req.SectionID,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			return utils.RespondError(c, http.StatusConflict, "Username o email ya registrados")
		}
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusBadRequest, err.Error())
		}
		return internalError(c, err, "creando usuario")
	}

	if claims, ok := middlewares.GetClaims(c); ok {
		uc.Audit.Record(claims.UserID, "create", "user", user.ID, user.Username)
	}
	return utils.RespondData(c, http.StatusCreated, user)
}

func (uc *UserController) UpdateHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondError(c, http.StatusBadRequest, "Payload inválido")
	}
	if errs := req.validate(false); len(errs) > 0 {
		return utils.RespondValidation(c, errs)
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user, err := uc.Service.Update(id, services.UserInput{
		Username: req.Username, Email: req.Email, Password: req.Password,
		FullName: req.FullName, Role: req.Role, SectionID: req.SectionID,
	}, isActive)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Usuario no encontrado")
		}
		if errors.Is(err, services.ErrDuplicate) {
			return utils.RespondError(c, http.StatusConflict, "Username o email ya registrados")
		}
		return internalError(c, err, "actualizando usuario")
	}

	if claims, ok := middlewares.GetClaims(c); ok {
		uc.Audit.Record(claims.UserID, "update", "user", user.ID, user.Username)
	}
	return utils.RespondData(c, http.StatusOK, user)
}

func (uc *UserController) DeleteHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return utils.RespondError(c, http.StatusBadRequest, err.Error())
	}

	// Un admin no puede desactivarse a sí mismo.
	if claims, ok := middlewares.GetClaims(c); ok && claims.UserID == id {
		return utils.RespondError(c, http.StatusBadRequest, "No puede desactivar su propia cuenta")
	}

	if err := uc.Service.SoftDelete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.RespondError(c, http.StatusNotFound, "Usuario no encontrado")
		}
		return internalError(c, err, "eliminando usuario")
	}

	if claims, ok := middlewares.GetClaims(c); ok {
		uc.Audit.Record(claims.UserID, "delete", "user", id, "")
	}
	return utils.RespondMessage(c, http.StatusOK, "Usuario desactivado")
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("id inválido")
	}
	return id, nil
}

func internalError(c echo.Context, err error, during string) error {
	logger.Log().WithError(err).Error("error " + during)
	return utils.RespondError(c, http.StatusInternalServerError, "Error interno")
}
