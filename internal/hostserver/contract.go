package hostserver

// NoteFormatContract describes the Markdown note and task format the
// vault uses, for consumers that create or update notes through the
// host tools.
const NoteFormatContract = `# LifeOS Note Format Contract

Every Markdown note stored in the vault follows this structure.

## Structure

` + "```" + `markdown
---
date: 2025-06-02                    # frontmatter: flat string key/values
energy: high
mood: 😊
---

## 今日任务

- [ ] task text #tag ⏰18:00
- [x] a finished task #errand

## 今日笔记

Free-form Markdown notes for the day.
` + "```" + `

## Rules

1. **Frontmatter is optional.** When present, the ` + "`" + `---` + "`" + ` fences must be
   the first thing in the file. Keys and values are flat strings split
   on the first colon; multi-line values use ` + "`" + `key: |` + "`" + ` with two-space
   indented lines.
2. **Task lines** are ` + "`" + `- [ ] text` + "`" + ` or ` + "`" + `- [x] text` + "`" + ` at the start of a
   line. ` + "`" + `#word` + "`" + ` tokens are tags; a ` + "`" + `⏰HH:MM` + "`" + ` token is the time marker.
   Tags and the time marker are stripped from the task text.
3. **Day notes** split on the first ` + "`" + `## 今日任务` + "`" + ` and ` + "`" + `## 今日笔记` + "`" + `
   headings; without markers the whole body counts as the task region.
4. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes, relative to
   the vault root.
5. **Encoding** is UTF-8.

## Vault layout

- ` + "`" + `daily/tasks/YYYY-MM-DD.md` + "`" + ` — day notes
- ` + "`" + `projects/<status>/*.md` + "`" + ` — project notes (title, status, priority)
- ` + "`" + `diary/YYYY/*.md` + "`" + ` — diary entries
- ` + "`" + `decisions/*.md` + "`" + ` — decision records
- ` + "`" + `Mailbox/<account>/<folder>/*.md` + "`" + ` — cached mail
`
