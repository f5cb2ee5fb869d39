package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var scaffoldDirs = []string{
	".life-os",
	".lifeos/servers",
	"daily/tasks",
	"daily/habits",
	"projects/active",
	"projects/backlog",
	"projects/paused",
	"projects/done",
	"planning/goals",
	"planning/reviews",
	"diary/2025",
	"diary/templates",
	"decisions",
	"connectors/github",
	"connectors/gmail",
	"connectors/calendar",
	"assets/images",
}

// InitVault scaffolds the vault directory tree, writes the seed files
// that are missing, and selects the path as the active vault.
func (a *Adapter) InitVault(ctx context.Context, path string) error {
	root := path
	for _, dir := range scaffoldDirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return fmt.Errorf("local: scaffold %s: %w", dir, err)
		}
	}

	today := time.Now().Format("2006-01-02")

	seeds := []struct {
		path    string
		content string
	}{
		{".life-os/config.yaml", fmt.Sprintf("vault_path: %q\ncreated: %q\nversion: \"0.1.0\"\n", path, today)},
		{"daily/habits/habits.yaml", habitsSeed(today)},
		{"daily/tasks/" + today + ".md", taskSeed(today)},
		{"projects/_board.yaml", boardSeed},
		{"diary/templates/daily.md", diaryTemplateSeed},
		{".life-os/connectors.yaml", connectorsSeed},
	}
	for _, seed := range seeds {
		if err := writeIfAbsent(filepath.Join(root, seed.path), seed.content); err != nil {
			return err
		}
	}

	return a.SetVaultPath(ctx, path)
}

// writeIfAbsent writes content only when the file does not exist, so
// re-initializing never clobbers user data.
func writeIfAbsent(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("local: seed %s: %w", path, err)
	}
	return nil
}

func habitsSeed(today string) string {
	return fmt.Sprintf(`# Habit Definitions
habits:
  - id: morning_meditation
    name: "晨间冥想"
    icon: "🧘"
    target_days: [1,2,3,4,5,6,7]
    created: %[1]q
  - id: exercise
    name: "运动"
    icon: "💪"
    target_days: [1,2,3,4,5,6,7]
    created: %[1]q
  - id: reading
    name: "阅读"
    icon: "📖"
    target_days: [1,2,3,4,5,6,7]
    created: %[1]q

# Check-in records (YYYY-MM-DD: [habit_ids])
checkins:
`, today)
}

func taskSeed(today string) string {
	return fmt.Sprintf(`---
date: %s
energy: high
mood: 😊
---

## 今日任务

- [ ] 晨间冥想 15分钟 #habit #health
- [ ] 阅读 30分钟 #growth
- [ ] 运动 45分钟 #health

## 今日笔记

今天是使用 Life OS 的第一天！
`, today)
}

const boardSeed = `columns:
  - id: backlog
    name: "💤 待规划"
    color: "#5a6a82"
  - id: todo
    name: "📋 计划中"
    color: "#00c8ff"
  - id: active
    name: "⚡ 进行中"
    color: "#7b61ff"
  - id: done
    name: "✅ 已完成"
    color: "#00ffa3"
`

const diaryTemplateSeed = `---
date: {{date}}
mood: 😊
weather: ~
energy: high
tags: []
---

## 今天发生了什么

{{content}}

## 今天的收获

-

## 明天的计划

-
`

const connectorsSeed = `# Life OS Connectors Configuration
# DO NOT commit this file to public repositories (add to .gitignore)

github:
  enabled: false
  token: ""
  username: ""

gmail:
  enabled: false
  # OAuth handled separately

calendar:
  enabled: false
  # OAuth handled separately
`
