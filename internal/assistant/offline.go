package assistant

import "regexp"

// Offline tips, checked in order
var offlineRules = []struct {
	pattern *regexp.Regexp
	reply   string
}{
	{
		regexp.MustCompile(`(?i)risk|リスク`),
		"影響(Impact)×発生確率(Likelihood)で優先度を決めましょう。高×高は即アクション。中〜低はトリガーを決めて監視。",
	},
	{
		regexp.MustCompile(`(?i)スケジュール|timeline|gantt|スプリント`),
		"重要マイルストーン→反復→個別タスクの順で粗→細に。レビュー/調達は前倒しに。",
	},
	{
		regexp.MustCompile(`(?i)ステークホルダー|stakeholder`),
		"期待値・関心度・影響度で仕分け。高影響×高関心には週次レポート＋早期相談。",
	},
}

// OfflineFallback is returned when no keyword matches
const OfflineFallback = "（モック応答）/api/chat を実装すると本番AI応答になります。質問を具体化すると実行手順まで提案します。"

// Offline answers from the fixed keyword table without any I/O
func Offline(message string) string {
	for _, rule := range offlineRules {
		if rule.pattern.MatchString(message) {
			return rule.reply
		}
	}
	return OfflineFallback
}
