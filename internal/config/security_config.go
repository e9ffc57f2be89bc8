// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic   SecurityLevel = iota // No authentication
	SecurityOptional                      // Access token used when present
	SecurityRefresh                       // Refresh token required
	SecurityAccess                        // Access token required
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Auth - Public
	"health":        SecurityPublic,
	"auth.register": SecurityPublic,
	"auth.login":    SecurityPublic,

	// Auth - Refresh Protected
	"auth.refresh": SecurityRefresh,

	// Auth - Access Protected
	"auth.me":              SecurityAccess,
	"auth.change_password": SecurityAccess,

	// Users - Access Protected, listing and status changes are admin only
	"profile.get":    SecurityAccess,
	"profile.update": SecurityAccess,
	"users.list":     SecurityAccess,
	"users.get":      SecurityAccess,
	"users.delete":   SecurityAccess,
	"users.status":   SecurityAccess,

	// Apartments - Public browsing
	"apartments.list":         SecurityPublic,
	"apartments.availability": SecurityPublic,
	"apartments.reviews":      SecurityPublic,
	// archived units are visible to their owner and past tenants
	"apartments.get": SecurityOptional,

	// Apartments - Access Protected
	"apartments.create":   SecurityAccess,
	"apartments.update":   SecurityAccess,
	"apartments.archive":  SecurityAccess,
	"apartments.delete":   SecurityAccess,
	"apartments.mine":     SecurityAccess,
	"apartments.favorite": SecurityAccess,
	"favorites.list":      SecurityAccess,

	// Facilities - Public listing
	"facilities.list":       SecurityPublic,
	"apartments.facilities": SecurityPublic,

	// Facilities - Access Protected
	"facilities.create":         SecurityAccess,
	"facilities.update":         SecurityAccess,
	"facilities.delete":         SecurityAccess,
	"apartments.set_facilities": SecurityAccess,

	// Promotions - admins see inactive codes when signed in
	"promotions.list":     SecurityOptional,
	"promotions.get":      SecurityOptional,
	"promotions.validate": SecurityPublic,

	// Promotions - Access Protected
	"promotions.create": SecurityAccess,
	"promotions.update": SecurityAccess,
	"promotions.delete": SecurityAccess,

	// Bookings - Access Protected
	"bookings.create":   SecurityAccess,
	"bookings.list":     SecurityAccess,
	"bookings.get":      SecurityAccess,
	"bookings.update":   SecurityAccess,
	"bookings.approve":  SecurityAccess,
	"bookings.reject":   SecurityAccess,
	"bookings.cancel":   SecurityAccess,
	"bookings.payments": SecurityAccess,

	// Payments - Access Protected
	"payments.create": SecurityAccess,
	"payments.list":   SecurityAccess,
	"payments.get":    SecurityAccess,
	"payments.proof":  SecurityAccess,
	"payments.verify": SecurityAccess,

	// Reviews - Access Protected
	"reviews.create":  SecurityAccess,
	"reviews.approve": SecurityAccess,

	// Notifications - Access Protected
	"notifications.list":     SecurityAccess,
	"notifications.unread":   SecurityAccess,
	"notifications.read":     SecurityAccess,
	"notifications.read_all": SecurityAccess,

	// Reports - Access Protected
	"reports.occupancy":      SecurityAccess,
	"reports.revenue":        SecurityAccess,
	"reports.top_apartments": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown routes
	return SecurityAccess
}
