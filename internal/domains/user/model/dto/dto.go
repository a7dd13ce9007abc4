package dto

import (
	"localguide/internal/domains/user/model"
	"localguide/shared"
	"localguide/shared/constant"
	gDto "localguide/shared/dto"
	"net/http"
	"strings"

	"github.com/lib/pq"
)

// UserResponse is a user without credentials.
type UserResponse struct {
	ID                string   `json:"id"`
	Email             string   `json:"email"`
	Name              string   `json:"name"`
	Role              string   `json:"role"`
	Phone             string   `json:"phone"`
	ProfilePic        string   `json:"profile_pic"`
	Bio               string   `json:"bio"`
	Languages         []string `json:"languages"`
	Expertise         []string `json:"expertise"`
	DailyRate         float64  `json:"daily_rate"`
	City              string   `json:"city"`
	Country           string   `json:"country"`
	TravelPreferences []string `json:"travel_preferences"`
	IsVerified        bool     `json:"is_verified"`
	IsActive          bool     `json:"is_active"`
	AverageRating     *float64 `json:"average_rating,omitempty"`
	ReviewCount       *int     `json:"review_count,omitempty"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(m model.User) {
	r.ID = m.ID
	r.Email = m.Email
	r.Name = m.Name
	r.Role = m.Role
	r.Phone = m.Phone
	r.ProfilePic = m.ProfilePic
	r.Bio = m.Bio
	r.Languages = nonNil(m.Languages)
	r.Expertise = nonNil(m.Expertise)
	r.DailyRate = m.DailyRate
	r.City = m.City
	r.Country = m.Country
	r.TravelPreferences = nonNil(m.TravelPreferences)
	r.IsVerified = m.IsVerified
	r.IsActive = m.IsActive
	r.Metadata.FromModel(m.Metadata)
}

func (r *UserResponse) FromProfile(p model.Profile) {
	r.FromModel(p.User)

	rating := p.Rating()
	reviews := p.Reviews()

	r.AverageRating = &rating
	r.ReviewCount = &reviews
}

type GetUsersResponse struct {
	Users      []UserResponse  `json:"users"`
	Pagination gDto.Pagination `json:"pagination"`
}

func (r *GetUsersResponse) FromModels(models []model.User, total int, params gDto.QueryParams) {
	r.Pagination = gDto.NewPagination(total, params)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}

type GetGuidesResponse struct {
	Guides     []UserResponse  `json:"guides"`
	Pagination gDto.Pagination `json:"pagination"`
}

func (r *GetGuidesResponse) FromProfiles(profiles []model.Profile, total int, params gDto.QueryParams) {
	r.Pagination = gDto.NewPagination(total, params)

	r.Guides = make([]UserResponse, len(profiles))
	for i, profile := range profiles {
		r.Guides[i].FromProfile(profile)
	}
}

// UpdateUserRequest is the wire shape of a profile update. Which of its fields are applied
// depends on the role of the account being updated, see ToCommand.
type UpdateUserRequest struct {
	Name              *string   `json:"name"               validate:"omitempty,min=2,max=100"`
	Bio               *string   `json:"bio"                validate:"omitempty,max=500"`
	Phone             *string   `json:"phone"              validate:"omitempty,max=30"`
	Languages         *[]string `json:"languages"          validate:"omitempty,dive,required"`
	ProfilePic        *string   `json:"profile_pic"        validate:"omitempty,url"`
	Expertise         *[]string `json:"expertise"          validate:"omitempty,dive,required"`
	DailyRate         *float64  `json:"daily_rate"         validate:"omitempty,min=0"`
	City              *string   `json:"city"               validate:"omitempty,max=100"`
	Country           *string   `json:"country"            validate:"omitempty,max=100"`
	TravelPreferences *[]string `json:"travel_preferences" validate:"omitempty,dive,required"`
}

// ProfileUpdate is a role specific update command. Each variant only carries the columns
// that role may change.
type ProfileUpdate interface {
	Role() string
	Fields(actor string) map[string]any
}

type TouristProfileUpdate struct {
	Name              *string         `db:"name"`
	Bio               *string         `db:"bio"`
	Phone             *string         `db:"phone"`
	Languages         *pq.StringArray `db:"languages"`
	ProfilePic        *string         `db:"profile_pic"`
	TravelPreferences *pq.StringArray `db:"travel_preferences"`
}

func (TouristProfileUpdate) Role() string { return constant.RoleTourist }

func (u TouristProfileUpdate) Fields(actor string) map[string]any {
	return shared.TransformFields(u, actor)
}

type GuideProfileUpdate struct {
	Name       *string         `db:"name"`
	Bio        *string         `db:"bio"`
	Phone      *string         `db:"phone"`
	Languages  *pq.StringArray `db:"languages"`
	ProfilePic *string         `db:"profile_pic"`
	Expertise  *pq.StringArray `db:"expertise"`
	DailyRate  *float64        `db:"daily_rate"`
	City       *string         `db:"city"`
	Country    *string         `db:"country"`
}

func (GuideProfileUpdate) Role() string { return constant.RoleGuide }

func (u GuideProfileUpdate) Fields(actor string) map[string]any {
	return shared.TransformFields(u, actor)
}

type AdminProfileUpdate struct {
	Name       *string         `db:"name"`
	Bio        *string         `db:"bio"`
	Phone      *string         `db:"phone"`
	Languages  *pq.StringArray `db:"languages"`
	ProfilePic *string         `db:"profile_pic"`
}

func (AdminProfileUpdate) Role() string { return constant.RoleAdmin }

func (u AdminProfileUpdate) Fields(actor string) map[string]any {
	return shared.TransformFields(u, actor)
}

// ToCommand narrows the request to the command allowed for an account with the given role.
// Fields outside that role's set are dropped silently.
func (r UpdateUserRequest) ToCommand(role string) ProfileUpdate {
	name := trimmed(r.Name)
	languages := toArray(r.Languages)

	switch role {
	case constant.RoleGuide:
		return GuideProfileUpdate{
			Name:       name,
			Bio:        r.Bio,
			Phone:      r.Phone,
			Languages:  languages,
			ProfilePic: r.ProfilePic,
			Expertise:  toArray(r.Expertise),
			DailyRate:  r.DailyRate,
			City:       trimmed(r.City),
			Country:    trimmed(r.Country),
		}
	case constant.RoleTourist:
		return TouristProfileUpdate{
			Name:              name,
			Bio:               r.Bio,
			Phone:             r.Phone,
			Languages:         languages,
			ProfilePic:        r.ProfilePic,
			TravelPreferences: toArray(r.TravelPreferences),
		}
	default:
		return AdminProfileUpdate{
			Name:       name,
			Bio:        r.Bio,
			Phone:      r.Phone,
			Languages:  languages,
			ProfilePic: r.ProfilePic,
		}
	}
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// ListUsersQuery is the admin user listing. Newest first.
type ListUsersQuery struct {
	gDto.QueryParams
	Role     string
	City     string
	Search   string
	IsActive *bool
}

func (q *ListUsersQuery) FromRequest(r *http.Request) {
	q.QueryParams.FromRequest(r, true)

	query := r.URL.Query()
	q.Role = strings.ToUpper(query.Get(model.FieldRole))
	q.City = query.Get(model.FieldCity)
	q.Search = query.Get("search")
	q.IsActive = shared.ConvertStringToBool(query.Get(model.FieldIsActive))

	q.SortBy = model.TableName + "." + constant.FieldCreatedAt
	q.SortDir = gDto.SortDirDesc
}

func (q *ListUsersQuery) Filter() gDto.FilterGroup {
	filter := gDto.NewFilterGroup()

	if q.Role != "" {
		filter.Add(gDto.Filter{Field: model.FieldRole, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: q.Role})
	}

	if q.IsActive != nil {
		filter.Add(gDto.Filter{Field: model.FieldIsActive, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: *q.IsActive})
	}

	if q.City != "" {
		filter.Add(gDto.Filter{Field: model.FieldCity, Table: model.TableName, Operator: gDto.FilterOperatorLike, Value: q.City})
	}

	if q.Search != "" {
		filter.Add(gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{ArgName: "search_name", Field: model.FieldName, Table: model.TableName, Operator: gDto.FilterOperatorLike, Value: q.Search},
				gDto.Filter{ArgName: "search_email", Field: model.FieldEmail, Table: model.TableName, Operator: gDto.FilterOperatorLike, Value: q.Search},
			},
		})
	}

	return filter
}

// ListGuidesQuery is the public guide search. Only active guides are returned.
type ListGuidesQuery struct {
	gDto.QueryParams
	City      string
	Country   string
	Language  string
	Expertise string
	MinRate   *float64
	MaxRate   *float64
	Search    string
}

func (q *ListGuidesQuery) FromRequest(r *http.Request) {
	q.QueryParams.FromRequest(r, true)

	query := r.URL.Query()
	q.City = query.Get(model.FieldCity)
	q.Country = query.Get(model.FieldCountry)
	q.Language = query.Get("language")
	q.Expertise = query.Get(model.FieldExpertise)
	q.MinRate = shared.ConvertStringToFloat(query.Get("min_rate"))
	q.MaxRate = shared.ConvertStringToFloat(query.Get("max_rate"))
	q.Search = query.Get("search")

	q.SortBy = model.TableName + "." + constant.FieldCreatedAt
	q.SortDir = gDto.SortDirDesc
}

func (q *ListGuidesQuery) Filter() gDto.FilterGroup {
	filter := gDto.NewFilterGroup(
		gDto.Filter{Field: model.FieldRole, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: constant.RoleGuide},
		gDto.Filter{Field: model.FieldIsActive, Table: model.TableName, Operator: gDto.FilterOperatorEq, Value: true},
	)

	if q.City != "" {
		filter.Add(gDto.Filter{Field: model.FieldCity, Table: model.TableName, Operator: gDto.FilterOperatorLike, Value: q.City})
	}

	if q.Country != "" {
		filter.Add(gDto.Filter{Field: model.FieldCountry, Table: model.TableName, Operator: gDto.FilterOperatorLike, Value: q.Country})
	}

	if q.Language != "" {
		filter.Add(gDto.Filter{Field: model.FieldLanguages, Table: model.TableName, Operator: gDto.FilterOperatorAny, Value: q.Language})
	}

	if q.Expertise != "" {
		filter.Add(gDto.Filter{Field: model.FieldExpertise, Table: model.TableName, Operator: gDto.FilterOperatorAny, Value: q.Expertise})
	}

	if q.MinRate != nil {
		filter.Add(gDto.Filter{ArgName: "min_rate", Field: model.FieldDailyRate, Table: model.TableName, Operator: gDto.FilterOperatorGreaterEq, Value: *q.MinRate})
	}

	if q.MaxRate != nil {
		filter.Add(gDto.Filter{ArgName: "max_rate", Field: model.FieldDailyRate, Table: model.TableName, Operator: gDto.FilterOperatorLessEq, Value: *q.MaxRate})
	}

	if q.Search != "" {
		filter.Add(gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorOr,
			Filters: []any{
				gDto.Filter{ArgName: "search_name", Field: model.FieldName, Table: model.TableName, Operator: gDto.FilterOperatorLike, Value: q.Search},
				gDto.Filter{ArgName: "search_bio", Field: model.FieldBio, Table: model.TableName, Operator: gDto.FilterOperatorLike, Value: q.Search},
			},
		})
	}

	return filter
}

func toArray(values *[]string) *pq.StringArray {
	if values == nil {
		return nil
	}

	array := pq.StringArray(*values)

	return &array
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}

	v := strings.TrimSpace(*value)

	return &v
}

func nonNil(values pq.StringArray) []string {
	if values == nil {
		return []string{}
	}

	return values
}
