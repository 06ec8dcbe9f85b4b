// Package domain holds the core entities of the platform: supporters and
// their donations, fundraising campaigns, volunteers, events with ticketing,
// memberships and content posts. Entities carry their own state machines;
// persistence lives in internal/store.
package domain
