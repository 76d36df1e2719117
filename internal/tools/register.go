// Package tools registers the read-only Daktela tool catalogue with the
// mcp-go server. Every tool resolves its API client per call, so whatever
// credentials the request context carries take effect before the static
// configuration does.
package tools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/daktela"
)

// Register registers all Daktela tools.
func Register(s *server.MCPServer, svc *daktela.Service) {
	// Ticket tools (6)
	registerListTickets(s, svc)
	registerCountTickets(s, svc)
	registerGetTicket(s, svc)
	registerGetTicketDetail(s, svc)
	registerListAccountTickets(s, svc)
	registerListTicketCategories(s, svc)

	// Activity tools (2)
	registerListActivities(s, svc)
	registerGetActivity(s, svc)

	// Call tools (4)
	registerListCalls(s, svc)
	registerGetCall(s, svc)
	registerGetCallTranscript(s, svc)
	registerListCallTranscripts(s, svc)

	// Email tools (2)
	registerListEmails(s, svc)
	registerGetEmail(s, svc)

	// Messaging channel tools (12, a list/get pair per channel)
	registerChatTools(s, svc)

	// Contact tools (2)
	registerListContacts(s, svc)
	registerGetContact(s, svc)

	// Account tools (2)
	registerListAccounts(s, svc)
	registerGetAccount(s, svc)

	// CRM record tools (1)
	registerListCRMRecords(s, svc)

	// Campaign tools (2)
	registerListCampaignRecords(s, svc)
	registerListCampaignTypes(s, svc)

	// Reference data tools (6)
	registerListQueues(s, svc)
	registerListUsers(s, svc)
	registerListGroups(s, svc)
	registerListPauses(s, svc)
	registerListStatuses(s, svc)
	registerListTemplates(s, svc)

	// Realtime tools (1)
	registerListRealtimeSessions(s, svc)
}
