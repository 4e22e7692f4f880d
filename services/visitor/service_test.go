package visitor

import (
	"testing"

	"github.com/spatium-offices/vms/services/directory"
	"github.com/spatium-offices/vms/services/user"
	"github.com/spatium-offices/vms/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupVisitors(t *testing.T) (*Service, *gorm.DB) {
	db := testutils.SetupTestDB(t,
		&directory.Facility{}, &directory.Company{}, &directory.PurposeOfVisit{},
		&user.Role{}, &user.User{},
		&Visitor{})
	return NewService(db, nil), db
}

func TestService_Register(t *testing.T) {
	service, db := setupVisitors(t)

	t.Run("records a visitor", func(t *testing.T) {
		v := &Visitor{Name: "Walk In", Email: "walkin@test.com", FromCompany: "Elsewhere Ltd"}

		require.NoError(t, service.Register(v))
		assert.NotZero(t, v.ID)
	})

	t.Run("requires a name", func(t *testing.T) {
		err := service.Register(&Visitor{Email: "noname@test.com"})
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		err := service.Register(&Visitor{Name: "Bad Email", Email: "nope"})
		assert.ErrorIs(t, err, ErrInvalidEmailFormat)
	})

	t.Run("email is optional", func(t *testing.T) {
		require.NoError(t, service.Register(&Visitor{Name: "No Email"}))
	})

	t.Run("repeat visits are allowed", func(t *testing.T) {
		require.NoError(t, service.Register(&Visitor{Name: "Walk In", Email: "walkin@test.com"}))

		var count int64
		require.NoError(t, db.Model(&Visitor{}).Where("email = ?", "walkin@test.com").Count(&count).Error)
		assert.EqualValues(t, 2, count)
	})

	t.Run("notifies the host", func(t *testing.T) {
		host := user.User{Email: "host@test.com", PhoneNumber: "+911234567890"}
		require.NoError(t, db.Create(&host).Error)

		notifier := &testutils.MockNotifier{}
		notifier.On("SendVisitorWaiting", "host@test.com", "Guest One", "Partner Plc").Return(nil)
		service.SetNotifier(notifier)
		defer service.SetNotifier(nil)

		require.NoError(t, service.Register(&Visitor{
			Name:        "Guest One",
			FromCompany: "Partner Plc",
			UserID:      &host.ID,
		}))
		notifier.AssertExpectations(t)
	})
}

func TestService_Get(t *testing.T) {
	service, _ := setupVisitors(t)

	v := &Visitor{Name: "Findable"}
	require.NoError(t, service.Register(v))

	found, err := service.Get(v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Findable", found.Name)

	_, err = service.Get(9999)
	assert.ErrorIs(t, err, ErrVisitorNotFound)
}

func TestService_List(t *testing.T) {
	service, db := setupVisitors(t)

	facility := directory.Facility{Name: "HQ"}
	require.NoError(t, db.Create(&facility).Error)
	otherFacility := directory.Facility{Name: "Annex"}
	require.NoError(t, db.Create(&otherFacility).Error)

	hereCo := directory.Company{Name: "Here Co", SpocEmail: "a@here.test",
		SpocPhoneNumber: "+911000000001", FacilityID: &facility.ID}
	require.NoError(t, db.Create(&hereCo).Error)
	thereCo := directory.Company{Name: "There Co", SpocEmail: "b@there.test",
		SpocPhoneNumber: "+911000000002", FacilityID: &otherFacility.ID}
	require.NoError(t, db.Create(&thereCo).Error)

	nowhereCo := directory.Company{Name: "Nowhere Co", SpocEmail: "c@nowhere.test",
		SpocPhoneNumber: "+911000000003"}
	require.NoError(t, db.Create(&nowhereCo).Error)

	require.NoError(t, service.Register(&Visitor{Name: "First", CompanyID: &hereCo.ID}))
	require.NoError(t, service.Register(&Visitor{Name: "Second", CompanyID: &hereCo.ID}))
	require.NoError(t, service.Register(&Visitor{Name: "Elsewhere", CompanyID: &thereCo.ID}))
	require.NoError(t, service.Register(&Visitor{Name: "Drifter", CompanyID: &nowhereCo.ID}))

	t.Run("unscoped returns everyone newest-first", func(t *testing.T) {
		visitors, total, err := service.List(nil, 0, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		require.Len(t, visitors, 4)
		assert.Equal(t, "Drifter", visitors[0].Name)
	})

	t.Run("scoped to a facility", func(t *testing.T) {
		visitors, total, err := service.List(&Scope{FacilityID: &facility.ID}, 0, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, visitors, 2)
	})

	t.Run("scope without a facility sees only facility-less companies", func(t *testing.T) {
		visitors, total, err := service.List(&Scope{}, 0, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, visitors, 1)
		assert.Equal(t, "Drifter", visitors[0].Name)
	})

	t.Run("pagination", func(t *testing.T) {
		visitors, total, err := service.List(nil, 1, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		require.Len(t, visitors, 1)
		assert.Equal(t, "Second", visitors[0].Name)
	})
}
