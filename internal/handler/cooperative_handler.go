package handler

import (
	"net/http"
	"strings"
	"time"

	"maltiti/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /admin/cooperatives と /admin/members
type CooperativeHandler struct {
	uc *usecase.CooperativeUsecase
}

func NewCooperativeHandler(uc *usecase.CooperativeUsecase) *CooperativeHandler {
	return &CooperativeHandler{uc: uc}
}

type CooperativeRequest struct {
	Name            string          `json:"name"`
	Community       string          `json:"community"`
	RegistrationFee decimal.Decimal `json:"registrationFee"`
	MonthlyFee      decimal.Decimal `json:"monthlyFee"`
	MinimalShare    decimal.Decimal `json:"minimalShare"`
}

func (r CooperativeRequest) input() usecase.CooperativeInput {
	return usecase.CooperativeInput{
		Name:            r.Name,
		Community:       r.Community,
		RegistrationFee: r.RegistrationFee,
		MonthlyFee:      r.MonthlyFee,
		MinimalShare:    r.MinimalShare,
	}
}

func (h *CooperativeHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	coops := e.Group("/admin/cooperatives", g.AdminOnly()...)
	coops.GET("", h.listCooperatives)
	coops.POST("", h.createCooperative)
	coops.GET("/:id", h.getCooperative)
	coops.PUT("/:id", h.updateCooperative)
	coops.DELETE("/:id", h.deleteCooperative)
	coops.GET("/:id/members", h.membersOfCooperative)

	members := e.Group("/admin/members", g.AdminOnly()...)
	members.GET("", h.listMembers)
	members.POST("", h.createMember)
	members.GET("/:id", h.getMember)
	members.PUT("/:id", h.updateMember)
	members.DELETE("/:id", h.deleteMember)
}

// =====================
// cooperatives
// =====================

func (h *CooperativeHandler) listCooperatives(c echo.Context) error {
	page, ok := queryPage(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid page"))
	}

	out, err := h.uc.ListCooperatives(c.Request().Context(), page, c.QueryParam("searchTerm"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CooperativeHandler) createCooperative(c echo.Context) error {
	var req CooperativeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	coop, err := h.uc.CreateCooperative(c.Request().Context(), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, coop)
}

func (h *CooperativeHandler) getCooperative(c echo.Context) error {
	coop, err := h.uc.GetCooperative(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, coop)
}

func (h *CooperativeHandler) updateCooperative(c echo.Context) error {
	var req CooperativeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	coop, err := h.uc.UpdateCooperative(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, coop)
}

func (h *CooperativeHandler) deleteCooperative(c echo.Context) error {
	if err := h.uc.DeleteCooperative(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Cooperative deleted"})
}

func (h *CooperativeHandler) membersOfCooperative(c echo.Context) error {
	members, err := h.uc.MembersOfCooperative(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, members)
}

// =====================
// members
// =====================

func (h *CooperativeHandler) listMembers(c echo.Context) error {
	page, ok := queryPage(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid page"))
	}

	out, err := h.uc.ListMembers(c.Request().Context(), page, c.QueryParam("searchTerm"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CooperativeHandler) getMember(c echo.Context) error {
	m, err := h.uc.GetMember(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CooperativeHandler) deleteMember(c echo.Context) error {
	if err := h.uc.DeleteMember(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Member deleted"})
}

func (h *CooperativeHandler) createMember(c echo.Context) error {
	in, err := memberForm(c)
	if err != nil {
		return writeError(c, err)
	}
	image, closeFn, err := memberImageFile(c)
	if err != nil {
		return writeError(c, err)
	}
	defer closeFn()

	m, err := h.uc.CreateMember(c.Request().Context(), in, image)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *CooperativeHandler) updateMember(c echo.Context) error {
	in, err := memberForm(c)
	if err != nil {
		return writeError(c, err)
	}
	image, closeFn, err := memberImageFile(c)
	if err != nil {
		return writeError(c, err)
	}
	defer closeFn()

	m, err := h.uc.UpdateMember(c.Request().Context(), c.Param("id"), in, image)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// 組合員はmultipart（画像ファイル付き）で受ける
func memberForm(c echo.Context) (usecase.MemberInput, error) {
	in := usecase.MemberInput{
		Name:                c.FormValue("name"),
		CooperativeID:       c.FormValue("cooperative"),
		PhoneNumber:         c.FormValue("phoneNumber"),
		HouseNumber:         c.FormValue("houseNumber"),
		GPSAddress:          c.FormValue("gpsAddress"),
		Image:               c.FormValue("image"),
		IDType:              c.FormValue("idType"),
		IDNumber:            c.FormValue("idNumber"),
		Community:           c.FormValue("community"),
		District:            c.FormValue("district"),
		Region:              c.FormValue("region"),
		Education:           c.FormValue("education"),
		Occupation:          c.FormValue("occupation"),
		SecondaryOccupation: c.FormValue("secondaryOccupation"),
		Crops:               c.FormValue("crops"),
		FarmSize:            c.FormValue("farmSize"),
	}
	if v := strings.TrimSpace(c.FormValue("dob")); v != "" {
		dob, err := time.Parse("2006-01-02", v)
		if err != nil {
			return in, usecase.NewHTTPError(http.StatusBadRequest, "invalid dob")
		}
		in.DateOfBirth = &dob
	}
	return in, nil
}

// ファイルが無ければnil（image欄がURLならそのまま使われる）
func memberImageFile(c echo.Context) (*usecase.ImageFile, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, noop, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, usecase.NewHTTPError(http.StatusBadRequest, "invalid image")
	}
	return &usecase.ImageFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
