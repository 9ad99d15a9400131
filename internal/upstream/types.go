package upstream

// Tenant identifies one of the organizational programs owning its own
// events, staff and announcements.
type Tenant string

const (
	TenantBizbize  Tenant = "BIZBIZE"
	TenantGecekodu Tenant = "GECEKODU"
	TenantAgc      Tenant = "AGC"
)

// ParseTenant maps a lowercase route segment to a Tenant.
func ParseTenant(segment string) (Tenant, bool) {
	switch segment {
	case "bizbize":
		return TenantBizbize, true
	case "gecekodu":
		return TenantGecekodu, true
	case "agc":
		return TenantAgc, true
	default:
		return "", false
	}
}

// Season belongs to exactly one tenant. Dates use the dd-MM-yyyy wire
// format. Competitors is the insertion-ordered membership list.
type Season struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	IsActive    bool         `json:"isActive"`
	Tenant      Tenant       `json:"tenant"`
	Competitors []Competitor `json:"competitors"`
}

type AddSeasonPayload struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	IsActive  bool   `json:"isActive"`
	Tenant    Tenant `json:"tenant"`
}

type UpdateSeasonPayload struct {
	ID        int64   `json:"id"`
	Name      *string `json:"name,omitempty"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// Competitor is tenant-scoped and independent of any season; membership is
// an edge, not part of this record.
type Competitor struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	TotalPoints      int    `json:"totalPoints"`
	CompetitionCount int    `json:"competitionCount"`
	IsActive         bool   `json:"isActive"`
	Tenant           Tenant `json:"tenant"`
}

type AddCompetitorPayload struct {
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
	Tenant   Tenant `json:"tenant"`
}

// Event dates use the dd-MM-yyyy HH:mm wire format. GuestName is only
// meaningful for the BizBize tenant.
type Event struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	GuestName   string  `json:"guestName,omitempty"`
	Linkedin    *string `json:"linkedin,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
	Type        string  `json:"type,omitempty"`
	FormURL     *string `json:"formUrl,omitempty"`
	IsActive    bool    `json:"isActive"`
	Tenant      Tenant  `json:"tenant,omitempty"`
	Photos      []Photo `json:"photos,omitempty"`
}

type AddEventPayload struct {
	Title       string `json:"title"`
	GuestName   string `json:"guestName,omitempty"`
	Linkedin    string `json:"linkedin,omitempty"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	Type        string `json:"type,omitempty"`
	FormURL     string `json:"formUrl,omitempty"`
	IsActive    bool   `json:"isActive"`
	Tenant      Tenant `json:"tenant"`
}

type UpdateEventPayload struct {
	ID          int64   `json:"id"`
	Title       *string `json:"title,omitempty"`
	GuestName   *string `json:"guestName,omitempty"`
	Linkedin    *string `json:"linkedin,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	Type        *string `json:"type,omitempty"`
	FormURL     *string `json:"formUrl,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

type Staff struct {
	ID         int64   `json:"id"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Linkedin   *string `json:"linkedin,omitempty"`
	Department *string `json:"department,omitempty"`
	Photo      *Photo  `json:"photo,omitempty"`
	Tenant     Tenant  `json:"tenant"`
}

type AddStaffPayload struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Linkedin   string `json:"linkedin,omitempty"`
	Department string `json:"department,omitempty"`
	PhotoID    *int64 `json:"photoId,omitempty"`
	Tenant     Tenant `json:"tenant"`
}

type UpdateStaffPayload struct {
	ID         int64   `json:"id"`
	FirstName  *string `json:"firstName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	Linkedin   *string `json:"linkedin,omitempty"`
	Department *string `json:"department,omitempty"`
}

type Announcement struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
	Type        *string `json:"type,omitempty"`
	Author      string  `json:"author,omitempty"`
	FormURL     *string `json:"formUrl,omitempty"`
	IsActive    bool    `json:"isActive"`
	Tenant      Tenant  `json:"tenant"`
	Photos      []Photo `json:"photos,omitempty"`
}

type AddAnnouncementPayload struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	IsActive bool   `json:"isActive"`
	Tenant   Tenant `json:"tenant"`
}

type UpdateAnnouncementPayload struct {
	ID      int64   `json:"id"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type Photo struct {
	ID       int64  `json:"id"`
	PhotoURL string `json:"photoUrl"`
	Tenant   Tenant `json:"tenant"`
}

type AddPhotoPayload struct {
	PhotoURL string `json:"photoUrl"`
	Tenant   Tenant `json:"tenant"`
}

// User is a dashboard account as reported by the super-admin endpoints.
type User struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"createdAt,omitempty"`
	LastLogin string   `json:"lastLogin,omitempty"`
}

type AddUserPayload struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

type ChangePasswordPayload struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}
