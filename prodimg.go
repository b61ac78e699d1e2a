// Package prodimg resolves product images for a washing-machine catalog.
// For each machine identified by brand and model it probes an ordered
// waterfall of external sources (vendor sites, marketplace search, retailer
// sites, marketplace detail pages), validates candidate pages and images
// against relevance and quality heuristics, stores the first acceptable
// image locally, and records the path and provenance in the catalog.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, http/).
package prodimg
