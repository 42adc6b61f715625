package stats

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

type StatsRenderer interface {
	RenderStats(stats WeeklyStats) (string, error)
}

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

// RenderStats writes one column per category plus a SUM column. Rows are the
// studied time, the policy and rates of the week and the goal when one is set.
func (t *CsvStatsRendererImpl) RenderStats(stats WeeklyStats) (string, error) {
	names := make([]string, 0, len(stats.Categories)+2)
	names = append(names, "Week of "+stats.WeekStart.String())
	studied := make([]string, 0, len(stats.Categories)+2)
	studied = append(studied, "Studied")
	for _, c := range stats.Categories {
		names = append(names, c.Name)
		studied = append(studied, durationToString(time.Duration(c.Minutes)*time.Minute))
	}
	names = append(names, "SUM")
	studied = append(studied, durationToString(time.Duration(stats.TotalHours*float64(time.Hour))))

	data := [][]string{
		names,
		studied,
		{"Counting", stats.Policy.Name()},
		{"Planned slots", strconv.Itoa(stats.PlannedSlots)},
		{"Record rate", strconv.Itoa(stats.RecordRate) + "%"},
		{"Completion rate", strconv.Itoa(stats.CompletionRate) + "%"},
	}
	if stats.Goal != nil {
		data = append(data, []string{"Goal", stats.Goal.TargetHours.String() + "h", strconv.Itoa(stats.Goal.Percent) + "%"})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func durationToString(duration time.Duration) string {
	hours := strconv.Itoa(int(duration.Hours()))
	if len(hours) == 1 {
		hours = "0" + hours
	}
	minutes := strconv.Itoa(int(duration.Minutes()) % 60)
	if len(minutes) == 1 {
		minutes = "0" + minutes
	}
	seconds := strconv.Itoa(int(duration.Seconds()) % 60)
	if len(seconds) == 1 {
		seconds = "0" + seconds
	}
	return hours + ":" + minutes + ":" + seconds
}
