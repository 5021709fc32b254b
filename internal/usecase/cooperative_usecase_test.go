package usecase_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"maltiti/internal/domain/model"
	repo "maltiti/internal/repository"
	"maltiti/internal/repository/mocks"
	"maltiti/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type coopFixture struct {
	coops    *mocks.CooperativeRepository
	members  *mocks.CooperativeMemberRepository
	uploader *mocks.ImageUploader
	uc       *usecase.CooperativeUsecase
}

func newCoopFixture() *coopFixture {
	f := &coopFixture{
		coops:    new(mocks.CooperativeRepository),
		members:  new(mocks.CooperativeMemberRepository),
		uploader: new(mocks.ImageUploader),
	}
	f.uc = usecase.NewCooperativeUsecase(f.coops, f.members, f.uploader, &mocks.SeqIDs{Prefix: "id-"})
	return f
}

func member() usecase.MemberInput {
	return usecase.MemberInput{Name: "Fuseini", CooperativeID: "coop-1", PhoneNumber: "+233241234567"}
}

func TestCooperativeUsecase_CreateCooperative_DuplicateName(t *testing.T) {
	f := newCoopFixture()
	f.coops.On("FindByName", mock.Anything, "Tolon Women").Return(model.Cooperative{ID: "coop-1"}, nil)

	_, err := f.uc.CreateCooperative(context.Background(), usecase.CooperativeInput{Name: "Tolon Women", Community: "Tolon"})
	assertStatus(t, err, http.StatusConflict)
	f.coops.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCooperativeUsecase_CreateCooperative(t *testing.T) {
	f := newCoopFixture()
	f.coops.On("FindByName", mock.Anything, "Tolon Women").Return(model.Cooperative{}, repo.ErrNotFound)
	f.coops.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Cooperative) bool {
		return c.ID == "id-1" && c.MonthlyFee.Equal(decimal.NewFromInt(5))
	})).Return(nil)

	c, err := f.uc.CreateCooperative(context.Background(), usecase.CooperativeInput{
		Name: " Tolon Women ", Community: "Tolon", MonthlyFee: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "Tolon Women", c.Name)
}

func TestCooperativeUsecase_ListCooperatives_Pages(t *testing.T) {
	f := newCoopFixture()
	f.coops.On("List", mock.Anything, "tol", 1, 10).Return([]model.Cooperative{{ID: "coop-1"}}, int64(21), nil)

	out, err := f.uc.ListCooperatives(context.Background(), 0, "tol")
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.TotalPages)
}

func TestCooperativeUsecase_CreateMember_KeepsImageURL(t *testing.T) {
	f := newCoopFixture()
	f.coops.On("FindByID", mock.Anything, "coop-1").Return(model.Cooperative{ID: "coop-1"}, nil)
	f.members.On("Create", mock.Anything, mock.MatchedBy(func(m *model.CooperativeMember) bool {
		return m.Image == "https://cdn.test/members/a.jpg"
	})).Return(nil)

	in := member()
	in.Image = "https://cdn.test/members/a.jpg"
	_, err := f.uc.CreateMember(context.Background(), in, nil)
	require.NoError(t, err)
	f.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCooperativeUsecase_CreateMember_UploadsFile(t *testing.T) {
	f := newCoopFixture()
	body := strings.NewReader("jpeg")
	f.coops.On("FindByID", mock.Anything, "coop-1").Return(model.Cooperative{ID: "coop-1"}, nil)
	// id-1は組合員、id-2は画像名
	f.uploader.On("Upload", mock.Anything, "members/id-2.jpg", "image/jpeg", body).Return("https://cdn.test/members/id-2.jpg", nil)
	f.members.On("Create", mock.Anything, mock.MatchedBy(func(m *model.CooperativeMember) bool {
		return m.ID == "id-1" && m.Image == "https://cdn.test/members/id-2.jpg"
	})).Return(nil)

	_, err := f.uc.CreateMember(context.Background(), member(), &usecase.ImageFile{
		Filename: "face.jpg", ContentType: "image/jpeg", Body: body,
	})
	require.NoError(t, err)
	f.members.AssertExpectations(t)
	f.uploader.AssertExpectations(t)
}

func TestCooperativeUsecase_CreateMember_DuplicatePhone(t *testing.T) {
	f := newCoopFixture()
	f.coops.On("FindByID", mock.Anything, "coop-1").Return(model.Cooperative{ID: "coop-1"}, nil)
	f.members.On("Create", mock.Anything, mock.Anything).Return(repo.ErrConflict)

	in := member()
	in.Image = "https://cdn.test/a.jpg"
	_, err := f.uc.CreateMember(context.Background(), in, nil)
	assertStatus(t, err, http.StatusConflict)
}

func TestCooperativeUsecase_CreateMember_UnknownCooperative(t *testing.T) {
	f := newCoopFixture()
	f.coops.On("FindByID", mock.Anything, "coop-1").Return(model.Cooperative{}, repo.ErrNotFound)

	_, err := f.uc.CreateMember(context.Background(), member(), nil)
	assertStatus(t, err, http.StatusNotFound)
}

func TestCooperativeUsecase_CreateMember_ImageRequired(t *testing.T) {
	f := newCoopFixture()
	f.coops.On("FindByID", mock.Anything, "coop-1").Return(model.Cooperative{ID: "coop-1"}, nil)

	_, err := f.uc.CreateMember(context.Background(), member(), nil)
	assertErrContains(t, err, "image required")
}

func TestCooperativeUsecase_MembersOfCooperative(t *testing.T) {
	f := newCoopFixture()
	f.coops.On("FindByID", mock.Anything, "coop-1").Return(model.Cooperative{ID: "coop-1"}, nil)
	f.members.On("ListByCooperativeID", mock.Anything, "coop-1").Return(nil, nil)

	items, err := f.uc.MembersOfCooperative(context.Background(), "coop-1")
	require.NoError(t, err)
	assert.NotNil(t, items)
}
