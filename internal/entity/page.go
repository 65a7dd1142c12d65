package entity

// Page identifies a screen of the client by its canonical file name.
// Handlers are registered against these values by exact key, never by
// matching on fragments of the name.
type Page string

const (
	PageIndex           Page = "index.html"
	PageLogin           Page = "login.html"
	PageFMDashboard     Page = "FMdashboard.html"
	PageHQDashboard     Page = "HQdashboard.html"
	PageAgencyDashboard Page = "AgencyDashboard.html"
	PageCitizenForm     Page = "Citizen.html"
	PageNadraPassport   Page = "Nadra-and-passport.html"
	PageSpecialBranch   Page = "SB.html"
	PageHQView          Page = "HQview.html"
	PageAgencyView      Page = "AgencyView.html"
	PageETDApproved     Page = "ETDdataviewApproved.html"
	PageETDNotApproved  Page = "ETDdataViewNotApproved.html"
	PageETDRemarks      Page = "ETD-remarks2.html"
)

// PageWildcard in an allowed-pages list grants access to every page.
const PageWildcard Page = "*"

// AllPages lists every screen except the entry pages, in menu order.
func AllPages() []Page {
	return []Page{
		PageFMDashboard,
		PageHQDashboard,
		PageAgencyDashboard,
		PageCitizenForm,
		PageNadraPassport,
		PageSpecialBranch,
		PageHQView,
		PageAgencyView,
		PageETDApproved,
		PageETDNotApproved,
		PageETDRemarks,
	}
}
