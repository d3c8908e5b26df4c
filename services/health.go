package services

import (
	"github.com/shirou/gopsutil/v3/disk"

	"webdl/models"
)

// DependencyChecker reports which external tools are installed.
type DependencyChecker interface {
	Dependencies() models.DependencyReport
}

// Health reports tool availability and free space in the download directory.
func Health(deps DependencyChecker, downloadDir string) models.HealthReport {
	report := models.HealthReport{Dependencies: deps.Dependencies()}

	usage, err := disk.Usage(downloadDir)
	if err != nil {
		report.DiskError = err.Error()
		return report
	}
	report.Disk = &models.DiskReport{
		Path:        downloadDir,
		Total:       usage.Total,
		Free:        usage.Free,
		UsedPercent: usage.UsedPercent,
	}
	return report
}
