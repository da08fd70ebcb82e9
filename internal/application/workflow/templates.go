package workflow

import "github.com/pixelpine/studio-crm/internal/domain/entity"

// MilestoneTemplate is one step in a per-project-type seeding template.
type MilestoneTemplate struct {
	Title                string
	Description          string
	Order                int
	RequiresClientAction bool
}

// milestoneTemplates maps project type to the ordered steps seeded when a
// project first moves to in_progress. This is configuration data; content
// and ordering are load-bearing for client-facing progress displays.
var milestoneTemplates = map[string][]MilestoneTemplate{
	entity.ProjectTypeStarter: {
		{Title: "Kickoff & Discovery", Description: "Intake call, goals, brand assets collected", Order: 10},
		{Title: "Sitemap & Wireframes", Description: "Page structure and low-fidelity layouts", Order: 20},
		{Title: "Design Mockup", Description: "High-fidelity homepage and inner page design", Order: 30, RequiresClientAction: true},
		{Title: "Development", Description: "Build-out of approved designs", Order: 40},
		{Title: "Content Entry", Description: "Copy, images and final assets placed", Order: 50},
		{Title: "Launch", Description: "DNS cutover, go-live checks", Order: 60},
	},
	entity.ProjectTypeGrowth: {
		{Title: "Kickoff & Discovery", Description: "Intake call, goals, brand assets collected", Order: 10},
		{Title: "Brand & Content Audit", Description: "Review of existing site, messaging and analytics", Order: 20},
		{Title: "Sitemap & Wireframes", Description: "Page structure and low-fidelity layouts", Order: 30},
		{Title: "Design Mockups", Description: "High-fidelity designs for key templates", Order: 40, RequiresClientAction: true},
		{Title: "Development", Description: "Build-out of approved designs", Order: 50},
		{Title: "SEO Setup", Description: "Metadata, redirects, sitemap submission", Order: 60},
		{Title: "QA & Testing", Description: "Cross-browser and device pass", Order: 70},
		{Title: "Launch", Description: "DNS cutover, go-live checks", Order: 80},
	},
	entity.ProjectTypeComplete: {
		{Title: "Kickoff & Discovery", Description: "Intake call, goals, brand assets collected", Order: 10},
		{Title: "Brand & Content Audit", Description: "Review of existing site, messaging and analytics", Order: 20},
		{Title: "Competitive Research", Description: "Positioning and feature comparison", Order: 30},
		{Title: "Sitemap & Information Architecture", Description: "Full site structure and navigation model", Order: 40},
		{Title: "Wireframes", Description: "Low-fidelity layouts for all templates", Order: 50},
		{Title: "Design Mockups", Description: "High-fidelity designs for all templates", Order: 60, RequiresClientAction: true},
		{Title: "Design Revisions", Description: "Revision rounds from client feedback", Order: 70},
		{Title: "Development", Description: "Build-out of approved designs", Order: 80},
		{Title: "Content Entry & Migration", Description: "Copy, images and legacy content migrated", Order: 90},
		{Title: "SEO & Analytics Setup", Description: "Metadata, redirects, tracking, search console", Order: 100},
		{Title: "QA & Testing", Description: "Cross-browser and device pass", Order: 110, RequiresClientAction: true},
		{Title: "Launch & Handoff", Description: "DNS cutover, training and documentation", Order: 120},
	},
}

// TemplateForType returns the milestone template for a project type.
// Unknown types (including enterprise and custom) fall back to starter.
func TemplateForType(projectType string) []MilestoneTemplate {
	if tpl, ok := milestoneTemplates[projectType]; ok {
		return tpl
	}
	return milestoneTemplates[entity.ProjectTypeStarter]
}
