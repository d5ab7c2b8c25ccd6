package app

import (
	"strings"

	"pysetup/components"
	"pysetup/internal/config"
)

const (
	rowVersion = iota
	rowInstallPath
	rowAlreadyInstalled
	rowRepoURL
	rowClonePath
	rowBranch
	rowSkipClone
	rowProjectPath
	rowEnvName
	rowPackages
	rowMainScript
	rowCreateBundle
	rowBundleName
	rowCount
)

// focusRun is the focus index of the run button.
const focusRun = rowCount

func rowsFromConfig(cfg config.Config) []components.FormRow {
	versions := config.SupportedVersions
	choice := 0
	found := false
	for i, v := range versions {
		if v == cfg.Python.Version {
			choice, found = i, true
			break
		}
	}
	if !found && cfg.Python.Version != "" {
		versions = append([]string{cfg.Python.Version}, versions...)
	}

	rows := make([]components.FormRow, rowCount)
	rows[rowVersion] = components.FormRow{Label: "Python version", Choices: versions, Choice: choice}
	rows[rowInstallPath] = textRow("Install path", "/usr/local/python3", cfg.Python.InstallPath)
	rows[rowAlreadyInstalled] = components.FormRow{Label: "Already installed", Toggle: true, On: cfg.Python.AlreadyInstalled}
	rows[rowRepoURL] = textRow("Repository URL", "https://github.com/you/app.git", cfg.Git.RepositoryURL)
	rows[rowClonePath] = textRow("Clone into", "~/Projects", cfg.Git.ClonePath)
	rows[rowBranch] = textRow("Branch", "main", cfg.Git.Branch)
	rows[rowSkipClone] = components.FormRow{Label: "Skip clone", Toggle: true, On: cfg.Git.SkipClone}
	rows[rowProjectPath] = textRow("Project path", "used when not cloning", cfg.Project.Path)
	rows[rowEnvName] = textRow("Environment name", ".venv", cfg.Project.EnvName)
	rows[rowPackages] = textRow("Packages", "default list", strings.Join(cfg.Project.Packages, " "))
	rows[rowMainScript] = textRow("Main script", "main.py", cfg.Launcher.MainScript)
	rows[rowCreateBundle] = components.FormRow{Label: "Create app bundle", Toggle: true, On: cfg.Launcher.CreateBundle}
	rows[rowBundleName] = textRow("Bundle name", "derived from main script", cfg.Launcher.AppBundleName)
	return rows
}

func textRow(label, placeholder, value string) components.FormRow {
	return components.FormRow{Label: label, Field: components.NewField(placeholder, value)}
}

// formConfig overlays the form onto the loaded settings. Settings without a
// row, such as package manager commands, pass through unchanged.
func (m model) formConfig() config.Config {
	cfg := m.base
	if len(m.rows) != rowCount {
		return cfg
	}
	text := func(i int) string { return strings.TrimSpace(m.rows[i].Value()) }

	cfg.Python.Version = text(rowVersion)
	cfg.Python.InstallPath = text(rowInstallPath)
	cfg.Python.AlreadyInstalled = m.rows[rowAlreadyInstalled].On
	cfg.Git.RepositoryURL = text(rowRepoURL)
	cfg.Git.ClonePath = text(rowClonePath)
	cfg.Git.Branch = text(rowBranch)
	cfg.Git.SkipClone = m.rows[rowSkipClone].On
	cfg.Project.Path = text(rowProjectPath)
	cfg.Project.EnvName = text(rowEnvName)
	cfg.Project.Packages = config.PackagesFromString(text(rowPackages))
	cfg.Launcher.MainScript = text(rowMainScript)
	cfg.Launcher.CreateBundle = m.rows[rowCreateBundle].On
	cfg.Launcher.AppBundleName = text(rowBundleName)
	return cfg
}

func (m *model) cycleChoice(delta int) {
	row := &m.rows[m.focus]
	n := len(row.Choices)
	if n == 0 {
		return
	}
	row.Choice = ((row.Choice+delta)%n + n) % n
}
