package mcpserver

// GroupingRulesURI is the resource URI of GroupingRules.
const GroupingRulesURI = "relyaml://grouping-rules"

// GroupingRules describes how related_notes groups notes, for LLM
// consumers that need to interpret or produce matching front-matter.
const GroupingRules = `# relyaml Grouping Rules

For the active note, every value of every front-matter field becomes a
group. A group lists every note (the active one included) that holds the
same value under the same field.

## Matching

- Values are compared case-insensitively. The group shows the value as the
  active note first wrote it.
- A list field contributes one group per element. Elements that differ only
  by case are merged.
- Numbers and booleans are compared by their text form (` + "`" + `42` + "`" + `, ` + "`" + `true` + "`" + `).
- Empty (null) fields and nested mappings produce no group.
- The ` + "`" + `position` + "`" + ` field is never grouped.

## Dates

- ` + "`" + `date created` + "`" + ` and ` + "`" + `date modified` + "`" + ` are always present. A note without
  such a field is compared using its file creation or modification day.
- ` + "`" + `date updated` + "`" + ` counts as ` + "`" + `date modified` + "`" + `. Field names are matched
  case-insensitively for these dates.
- Dates are compared as ` + "`" + `YYYY-MM-DD` + "`" + ` in the server's time zone. A value that
  cannot be read as a date is kept as written.
- When the active note has an explicit date field, its file day is also
  added as a value of that field.

## Example

` + "```" + `markdown
---
tags: [project-x, Meeting]
status: draft
date created: 2025-01-20
---
` + "```" + `

yields groups ` + "`" + `tags/project-x` + "`" + `, ` + "`" + `tags/Meeting` + "`" + `, ` + "`" + `status/draft` + "`" + `,
` + "`" + `date created/2025-01-20` + "`" + `, ` + "`" + `date created/<file creation day>` + "`" + ` and
` + "`" + `date modified/<file modification day>` + "`" + `.
`
