package usecase

import (
	"context"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"maltiti/internal/domain/model"
	repo "maltiti/internal/repository"

	"github.com/shopspring/decimal"
)

const cooperativePageSize = 10

// http(s)://host(:port)/path 程度の緩い判定
var urlPattern = regexp.MustCompile(`^(https?://)?([\w-]+(\.[\w-]+)+/?|localhost|(\d{1,3}\.){3}\d{1,3})(:\d+)?(/\S*)?$`)

type CooperativeUsecase struct {
	coops    repo.CooperativeRepository
	members  repo.CooperativeMemberRepository
	uploader ImageUploader
	idGen    IDGenerator
}

func NewCooperativeUsecase(coops repo.CooperativeRepository, members repo.CooperativeMemberRepository, uploader ImageUploader, idGen IDGenerator) *CooperativeUsecase {
	return &CooperativeUsecase{coops: coops, members: members, uploader: uploader, idGen: idGen}
}

type CooperativeInput struct {
	Name            string
	Community       string
	RegistrationFee decimal.Decimal
	MonthlyFee      decimal.Decimal
	MinimalShare    decimal.Decimal
}

func (in CooperativeInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if strings.TrimSpace(in.Community) == "" {
		return NewHTTPError(http.StatusBadRequest, "community required")
	}
	if in.RegistrationFee.IsNegative() || in.MonthlyFee.IsNegative() || in.MinimalShare.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "fees must be >= 0")
	}
	return nil
}

type CooperativeListOutput struct {
	TotalItems   int64               `json:"total_items"`
	CurrentPage  int                 `json:"current_page"`
	TotalPages   int64               `json:"total_pages"`
	Cooperatives []model.Cooperative `json:"cooperatives"`
}

type MemberListOutput struct {
	TotalItems  int64                     `json:"total_items"`
	CurrentPage int                       `json:"current_page"`
	TotalPages  int64                     `json:"total_pages"`
	Members     []model.CooperativeMember `json:"members"`
}

func (u *CooperativeUsecase) CreateCooperative(ctx context.Context, in CooperativeInput) (model.Cooperative, error) {
	if err := in.validate(); err != nil {
		return model.Cooperative{}, err
	}

	_, err := u.coops.FindByName(ctx, strings.TrimSpace(in.Name))
	if err == nil {
		return model.Cooperative{}, NewHTTPError(http.StatusConflict, "Cooperative with name already exists")
	}
	if err != repo.ErrNotFound {
		return model.Cooperative{}, dbError()
	}

	c := model.Cooperative{ID: u.idGen.NewID()}
	in.apply(&c)
	if err := u.coops.Create(ctx, &c); err != nil {
		if err == repo.ErrConflict {
			return model.Cooperative{}, NewHTTPError(http.StatusConflict, "Cooperative with name already exists")
		}
		return model.Cooperative{}, dbError()
	}
	return c, nil
}

func (in CooperativeInput) apply(c *model.Cooperative) {
	c.Name = strings.TrimSpace(in.Name)
	c.Community = strings.TrimSpace(in.Community)
	c.RegistrationFee = in.RegistrationFee
	c.MonthlyFee = in.MonthlyFee
	c.MinimalShare = in.MinimalShare
}

func (u *CooperativeUsecase) UpdateCooperative(ctx context.Context, id string, in CooperativeInput) (model.Cooperative, error) {
	if err := in.validate(); err != nil {
		return model.Cooperative{}, err
	}
	c, err := u.GetCooperative(ctx, id)
	if err != nil {
		return model.Cooperative{}, err
	}
	in.apply(&c)

	if err := u.coops.Update(ctx, c); err != nil {
		switch err {
		case repo.ErrNotFound:
			return model.Cooperative{}, NewHTTPError(http.StatusNotFound, "cooperative not found")
		case repo.ErrConflict:
			return model.Cooperative{}, NewHTTPError(http.StatusConflict, "Cooperative with name already exists")
		}
		return model.Cooperative{}, dbError()
	}
	return c, nil
}

func (u *CooperativeUsecase) DeleteCooperative(ctx context.Context, id string) error {
	if id == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.coops.Delete(ctx, id)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "cooperative not found")
	}
	if err != nil {
		return dbError()
	}
	return nil
}

func (u *CooperativeUsecase) GetCooperative(ctx context.Context, id string) (model.Cooperative, error) {
	if id == "" {
		return model.Cooperative{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	c, err := u.coops.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Cooperative{}, NewHTTPError(http.StatusNotFound, "cooperative not found")
	}
	if err != nil {
		return model.Cooperative{}, dbError()
	}
	return c, nil
}

func (u *CooperativeUsecase) ListCooperatives(ctx context.Context, page int, q string) (CooperativeListOutput, error) {
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return CooperativeListOutput{Cooperatives: []model.Cooperative{}}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	items, total, err := u.coops.List(ctx, strings.TrimSpace(q), page, cooperativePageSize)
	if err != nil {
		return CooperativeListOutput{Cooperatives: []model.Cooperative{}}, dbError()
	}
	if items == nil {
		items = []model.Cooperative{}
	}
	return CooperativeListOutput{
		TotalItems:   total,
		CurrentPage:  page,
		TotalPages:   (total + cooperativePageSize - 1) / cooperativePageSize,
		Cooperatives: items,
	}, nil
}

// 画像ファイル（任意）
type ImageFile struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type MemberInput struct {
	Name                string
	CooperativeID       string
	PhoneNumber         string
	HouseNumber         string
	GPSAddress          string
	Image               string
	IDType              string
	IDNumber            string
	Community           string
	District            string
	Region              string
	DateOfBirth         *time.Time
	Education           string
	Occupation          string
	SecondaryOccupation string
	Crops               string
	FarmSize            string
}

func (in MemberInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if strings.TrimSpace(in.CooperativeID) == "" {
		return NewHTTPError(http.StatusBadRequest, "cooperative required")
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		return NewHTTPError(http.StatusBadRequest, "phoneNumber required")
	}
	return nil
}

func (in MemberInput) apply(m *model.CooperativeMember) {
	m.Name = strings.TrimSpace(in.Name)
	m.CooperativeID = in.CooperativeID
	m.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	m.HouseNumber = in.HouseNumber
	m.GPSAddress = in.GPSAddress
	m.IDType = in.IDType
	m.IDNumber = in.IDNumber
	m.Community = in.Community
	m.District = in.District
	m.Region = in.Region
	m.DateOfBirth = in.DateOfBirth
	m.Education = in.Education
	m.Occupation = in.Occupation
	m.SecondaryOccupation = in.SecondaryOccupation
	m.Crops = in.Crops
	m.FarmSize = in.FarmSize
}

func (u *CooperativeUsecase) CreateMember(ctx context.Context, in MemberInput, image *ImageFile) (model.CooperativeMember, error) {
	if err := in.validate(); err != nil {
		return model.CooperativeMember{}, err
	}
	if _, err := u.GetCooperative(ctx, in.CooperativeID); err != nil {
		return model.CooperativeMember{}, err
	}

	m := model.CooperativeMember{ID: u.idGen.NewID()}
	in.apply(&m)
	url, err := u.memberImage(ctx, in.Image, image)
	if err != nil {
		return model.CooperativeMember{}, err
	}
	m.Image = url

	if err := u.members.Create(ctx, &m); err != nil {
		if err == repo.ErrConflict {
			return model.CooperativeMember{}, NewHTTPError(http.StatusConflict, "Member with phone number already exists")
		}
		return model.CooperativeMember{}, dbError()
	}
	return m, nil
}

func (u *CooperativeUsecase) UpdateMember(ctx context.Context, id string, in MemberInput, image *ImageFile) (model.CooperativeMember, error) {
	if err := in.validate(); err != nil {
		return model.CooperativeMember{}, err
	}
	m, err := u.GetMember(ctx, id)
	if err != nil {
		return model.CooperativeMember{}, err
	}
	if m.CooperativeID != in.CooperativeID {
		if _, err := u.GetCooperative(ctx, in.CooperativeID); err != nil {
			return model.CooperativeMember{}, err
		}
	}

	in.apply(&m)
	m.Cooperative = nil
	url, err := u.memberImage(ctx, in.Image, image)
	if err != nil {
		return model.CooperativeMember{}, err
	}
	m.Image = url

	if err := u.members.Update(ctx, m); err != nil {
		switch err {
		case repo.ErrNotFound:
			return model.CooperativeMember{}, NewHTTPError(http.StatusNotFound, "member not found")
		case repo.ErrConflict:
			return model.CooperativeMember{}, NewHTTPError(http.StatusConflict, "Member with phone number already exists")
		}
		return model.CooperativeMember{}, dbError()
	}
	return m, nil
}

// 画像欄がURLならそのまま、そうでなければアップロードされたファイルを保存する
func (u *CooperativeUsecase) memberImage(ctx context.Context, field string, image *ImageFile) (string, error) {
	field = strings.TrimSpace(field)
	if field != "" && urlPattern.MatchString(field) {
		return field, nil
	}
	if image == nil || image.Body == nil {
		return "", NewHTTPError(http.StatusBadRequest, "image required")
	}
	if !strings.HasPrefix(image.ContentType, "image/") {
		return "", NewHTTPError(http.StatusBadRequest, "file must be an image")
	}

	name := "members/" + u.idGen.NewID() + strings.ToLower(path.Ext(image.Filename))
	url, err := u.uploader.Upload(ctx, name, image.ContentType, image.Body)
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "upload failed")
	}
	return url, nil
}

func (u *CooperativeUsecase) DeleteMember(ctx context.Context, id string) error {
	if id == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.members.Delete(ctx, id)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "member not found")
	}
	if err != nil {
		return dbError()
	}
	return nil
}

func (u *CooperativeUsecase) GetMember(ctx context.Context, id string) (model.CooperativeMember, error) {
	if id == "" {
		return model.CooperativeMember{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := u.members.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.CooperativeMember{}, NewHTTPError(http.StatusNotFound, "member not found")
	}
	if err != nil {
		return model.CooperativeMember{}, dbError()
	}
	return m, nil
}

func (u *CooperativeUsecase) ListMembers(ctx context.Context, page int, q string) (MemberListOutput, error) {
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return MemberListOutput{Members: []model.CooperativeMember{}}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	items, total, err := u.members.List(ctx, strings.TrimSpace(q), page, cooperativePageSize)
	if err != nil {
		return MemberListOutput{Members: []model.CooperativeMember{}}, dbError()
	}
	if items == nil {
		items = []model.CooperativeMember{}
	}
	return MemberListOutput{
		TotalItems:  total,
		CurrentPage: page,
		TotalPages:  (total + cooperativePageSize - 1) / cooperativePageSize,
		Members:     items,
	}, nil
}

func (u *CooperativeUsecase) MembersOfCooperative(ctx context.Context, cooperativeID string) ([]model.CooperativeMember, error) {
	if _, err := u.GetCooperative(ctx, cooperativeID); err != nil {
		return []model.CooperativeMember{}, err
	}
	items, err := u.members.ListByCooperativeID(ctx, cooperativeID)
	if err != nil {
		return []model.CooperativeMember{}, dbError()
	}
	if items == nil {
		items = []model.CooperativeMember{}
	}
	return items, nil
}
