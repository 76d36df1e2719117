package tools

// InstructionsText returns the static instruction string the MCP server sends
// to clients during initialization. It documents the Daktela naming
// conventions, the stage/type/direction vocabularies, and the workflow
// patterns the tools are designed around, so a model can pick the right tool
// without trial and error.
func InstructionsText() string {
	return `Read-only access to the Daktela contact center platform (REST API v6). Use these tools to query tickets, activities, contacts, accounts, CRM records, queues, users, campaigns, and real-time agent status.

## Key naming conventions
- Every record has a 'name' field (internal unique ID) and a 'title' field (human display name).
- **user/agent filters**: pass the LOGIN NAME (the 'name' field from list_users), e.g. 'john.doe', NOT the display name 'John Doe'.
- **contact filters**: pass the contact's internal 'name' ID (e.g. 'contact_674eda46162a8403430453'), NOT a person's name. Call list_contacts(search='John') first to find the ID.
- **account filters**: pass the account's internal 'name' ID (e.g. 'account_674eda46162a8403430453'), NOT the company name. Call list_accounts(search='Notino') first to find the ID. Exception: list_account_tickets accepts a human-readable company name directly.
- **category filters**: pass the 'name' field from list_ticket_categories.
- **queue filters**: pass the 'name' field from list_queues (e.g. '10333').

## Ticket stages (stage field)
OPEN = agent is actively working on it | WAIT = agent replied, waiting for customer response | CLOSE = resolved/solved | ARCHIVE = resolved, any new customer reply creates a fresh ticket

**Natural language → stage mapping** (use this when interpreting user requests):
- 'open', 'active', 'unresolved', 'pending' → stage=OPEN and/or stage=WAIT
- 'waiting' → stage=WAIT
- 'closed', 'resolved', 'solved', 'done' → stage=CLOSE
- 'archived' → stage=ARCHIVE
- To get ALL unresolved tickets (both being worked on and awaiting reply): make two calls — one with stage=OPEN and one with stage=WAIT — then combine.

## Ticket priority (priority field)
LOW | MEDIUM | HIGH

## Activity types (type field)
CALL = phone call | EMAIL = email | CHAT = web chat | SMS = SMS | FBM = Facebook Messenger | IGDM = Instagram DM | WAP = WhatsApp | VBR = Viber | CUSTOM = custom channel

## Activity action/status (action field)
OPEN = in progress | WAIT = waiting | POSTPONE = postponed | CLOSE = closed

## Call direction
in = incoming | out = outgoing | internal = internal

## Entity relationships
- Accounts are companies/organizations. Contacts belong to accounts.
- CRM records are deals/opportunities linked to contacts, accounts, and tickets.
- Campaign records track outbound campaign activity (calls made, results).

## Workflow guidance
- **Agent/user names are resolved automatically**: all tools that accept a 'user' parameter (list_tickets, count_tickets, list_activities, list_calls, etc.) accept display names like 'John Doe' or login names like 'john.doe'. You do NOT need to call list_users first.
- **To find tickets for a company/account**: call list_account_tickets(account='company name') directly. Pass a COMPANY NAME like 'Notino' or 'Siemens'. The tool resolves the name automatically. Do NOT call list_accounts first.
- **To count tickets for an agent**: call count_tickets(user='John Doe', stage='OPEN') directly.
- When user says 'open tickets': use stage='OPEN'. For ALL unresolved tickets (both active and awaiting reply): make two calls with stage='OPEN' and stage='WAIT'.
- **To analyze a specific ticket in depth**: use get_ticket_detail — it returns the ticket plus all linked activities (emails, calls, chats) with their content in one call.
- **To filter tickets by workflow/sales stage**: use the status parameter (e.g. list_tickets(status='S1-Discovery')). Call list_statuses first to see available values.
- To count or filter tickets by a category, first call list_ticket_categories to get the exact name.
- To filter activities by queue, first call list_queues to get the queue name.
- Use count_tickets (not list_tickets) when you only need a number — it is much faster.
- Use get_ticket when you have a specific ticket ID (e.g. TK00123) — do not list all tickets to find one.
- Use get_contact when you have a specific contact ID — do not list all contacts to find one.
- Use get_activity when you have a specific activity ID — do not list all activities to find one.
- Use get_account when you have a specific account name — do not list all accounts to find one.
- **Channel detail tools**: use get_call, get_email, get_web_chat, get_sms, get_messenger_chat, get_instagram_chat, get_whatsapp_chat, get_viber_chat to get full details of a specific activity by channel.
- **Call transcripts**: use list_call_transcripts to get recent calls with their full speech-to-text dialogue inline — ideal for quality review, escalation detection, or identifying calls needing management attention. Use get_call_transcript for a single call's transcript when you already know the activity name.
- Use list_tickets(search=...) to find tickets by keyword in title/description.
- For detailed call data (duration, CLID, missed calls), use list_calls instead of list_activities(type='CALL').
- For detailed email data (subject, address, body), use list_emails instead of list_activities(type='EMAIL').
- For channel-specific chat details, use list_web_chats, list_sms_chats, list_messenger_chats, etc.
- Use list_realtime_sessions to see which agents are currently online and their status.
- When listing activities, always specify type and/or date range to keep results focused.
- Dates in YYYY-MM-DD or 'YYYY-MM-DD HH:MM:SS' format.
- Pagination: use skip + take. Max take=1000. Default take=50.

## Custom fields
Tickets, activities, contacts, accounts, CRM records, and campaign records can all have instance-specific custom fields. These are returned automatically in every tool response under labeled fields. Custom fields vary per Daktela instance — they may include sales pipeline data (MRR, lead source, product), support metadata, or any business-specific attributes. Use these fields for analysis just like standard fields.

## How to think about data access
This server is designed for **active conversation analysis**, not historical reporting. The LLM's strength is understanding language, sentiment, and context — use it on live data:

**Tickets → filter by stage and status, NOT by date.**
- Open tickets (OPEN + WAIT) are the active workload — these matter regardless of age.
- A sales lead open for 6 months is just as relevant as one opened yesterday.
- Use stage, status, category, and priority to find what matters.
- Closed/archived tickets are historical — only query them for specific investigations.

**Activities → filter by date range.**
- Recent calls, emails, chats (last 7 days) are the fresh conversations.
- Many activities exist WITHOUT a ticket — standalone calls, quick chats.
- Use date_from/date_to to scope to the relevant period.

**Drill into specifics, don't bulk-download.**
- List tickets/activities with filters to scan the landscape.
- Use get_ticket_detail on interesting tickets to read the full conversation.
- Use get_email, get_call, etc. for individual activity details.
- Max 200 records per list call. Use pagination if needed.

## Analytical workflow patterns
- **What needs attention now?** List OPEN tickets sorted by SLA deadline. Check for unread tickets, overdue SLAs, high-priority items.
- **Sales pipeline review**: list tickets by category + status (e.g. 'S1-Discovery'). Read custom fields (MRR, product, source) to assess each lead.
- **Agent performance**: list recent calls/emails per agent. Check handle time, missed calls, response patterns.
- **Customer deep-dive**: find contact → list their open tickets → get_ticket_detail on each to read the conversation history.
- **Operational health**: check missed calls (last 7 days), realtime agent sessions, SLA breaches on open tickets.
- **Communication quality**: use get_ticket_detail or get_email to read actual content for sentiment analysis, quality assessment, or escalation detection.
- **Call quality / management attention**: use list_call_transcripts(date_from=..., take=10) to get recent calls with full dialogue, then analyze transcripts for customer frustration, escalation requests, compliance issues, or exceptional service.

## Data presentation
Always choose the richest appropriate format — default to visual when the data supports it.

**Charts** — create a React artifact using Recharts (render inline, not as a code block):
- Per-day, per-hour, or any time-series breakdown → bar chart (X = date/time, Y = count or duration)
- Trends across multiple periods → line chart
- Comparisons across queues, agents, or channels → horizontal bar chart sorted by value
- Distributions (call duration buckets, ticket age, etc.) → bar chart
- When a date range spans 3 or more days, default to a per-day chart unless asked otherwise

**Tables** — markdown table:
- Any list of records with 3 or more fields (tickets, agents, contacts, calls)
- Leaderboards (top agents by volume, resolution rate, handle time, etc.)

**Inline figures:**
- Single counts or percentages → bold the key number, one sentence of context

**Always follow every chart or table with a 2–3 sentence insight**: name the peak, the outlier, or the actionable takeaway. Don't just display data — interpret it.

**Contact center defaults:**
- Missed calls, answered calls, handle time → bar chart by day/queue/agent
- Ticket volume by stage, priority, or category → bar chart
- Agent activity or performance summary → ranked table
- Real-time agent status → table (agent, state, pause reason)
- SLA figures → bold percentage with a one-line verdict (on track / at risk / breached)`
}
