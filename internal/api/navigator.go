package api

import (
	"context"
	"strings"
	"sync"

	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/pkg/logger"
)

// pagePaths maps logical page names onto served paths. Lookups fall back to
// treating the input as a literal path.
var pagePaths = map[entity.Page]string{
	entity.PageIndex: "/index.html",
	entity.PageLogin: "/pages/login.html",

	entity.PageFMDashboard:     "/pages/dashboards/FMdashboard.html",
	entity.PageHQDashboard:     "/pages/dashboards/HQdashboard.html",
	entity.PageAgencyDashboard: "/pages/dashboards/AgencyDashboard.html",

	entity.PageCitizenForm:   "/pages/forms/Citizen.html",
	entity.PageNadraPassport: "/pages/forms/Nadra-and-passport.html",
	entity.PageSpecialBranch: "/pages/forms/SB.html",

	entity.PageAgencyView:     "/pages/views/AgencyView.html",
	entity.PageHQView:         "/pages/views/HQview.html",
	entity.PageETDApproved:    "/pages/views/ETDdataviewApproved.html",
	entity.PageETDNotApproved: "/pages/views/ETDdataViewNotApproved.html",
	entity.PageETDRemarks:     "/pages/views/ETD-remarks2.html",
}

// backRoutes is the navigation hierarchy behind "Back" controls. Pages
// without an entry fall back to the visit history.
var backRoutes = map[entity.Page]entity.Page{
	entity.PageLogin: entity.PageIndex,

	entity.PageFMDashboard:     entity.PageLogin,
	entity.PageHQDashboard:     entity.PageLogin,
	entity.PageAgencyDashboard: entity.PageLogin,

	entity.PageCitizenForm:   entity.PageFMDashboard,
	entity.PageNadraPassport: entity.PageCitizenForm,
	entity.PageSpecialBranch: entity.PageHQDashboard,

	entity.PageAgencyView:     entity.PageAgencyDashboard,
	entity.PageHQView:         entity.PageHQDashboard,
	entity.PageETDApproved:    entity.PageFMDashboard,
	entity.PageETDNotApproved: entity.PageFMDashboard,
	entity.PageETDRemarks:     entity.PageETDApproved,
}

// PathFor resolves a page to its served path.
func PathFor(page entity.Page) string {
	if path, ok := pagePaths[page]; ok {
		return path
	}

	return string(page)
}

// PageFromPath resolves a served path back to its page, falling back to the
// trailing file name.
func PageFromPath(path string) entity.Page {
	for page, p := range pagePaths {
		if p == path {
			return page
		}
	}

	if i := strings.LastIndex(path, "/"); i >= 0 {
		return entity.Page(path[i+1:])
	}

	return entity.Page(path)
}

// Navigator is the single mutable navigation state: the current location and
// the visit history behind it.
type Navigator struct {
	mu      sync.Mutex
	history []string
}

func NewNavigator() *Navigator {
	return &Navigator{history: []string{PathFor(entity.PageIndex)}}
}

func (n *Navigator) NavigateTo(ctx context.Context, path string) {
	n.mu.Lock()
	n.history = append(n.history, path)
	n.mu.Unlock()

	logger.FromContext(ctx).InfoContext(ctx, "navigate", "path", path)
}

func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.history[len(n.history)-1]
}

// Back resolves the configured parent of the current page, falling back to
// the previous history entry, and navigates there.
func (n *Navigator) Back(ctx context.Context) string {
	n.mu.Lock()

	current := PageFromPath(n.history[len(n.history)-1])

	var target string

	if parent, ok := backRoutes[current]; ok {
		target = PathFor(parent)
		n.history = append(n.history, target)
	} else if len(n.history) > 1 {
		n.history = n.history[:len(n.history)-1]
		target = n.history[len(n.history)-1]
	} else {
		target = n.history[0]
	}

	n.mu.Unlock()

	logger.FromContext(ctx).InfoContext(ctx, "navigate back", "path", target)

	return target
}
