package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Converting %s to %s (%s)":        "%s を %s に変換中 (%s)",
		"Splitting %s":                    "%s を分割中",
		"Wrote %s (%d frames, %s)":        "%s を書き出しました (%d フレーム, %s)",
		"No depth track in %s":            "%s に深度トラックがありません",
		"Failed to %s %s: %v":             "%[2]s の%[1]sに失敗しました: %[3]v",
		"Failed to save debug output: %v": "デバッグ出力の保存に失敗しました: %v",
		"Interrupted, shutting down...":   "中断されました。シャットダウン中...",
		"Loaded configuration from %s":    "%s から設定を読み込みました",
		"Summary written to %s":           "サマリーを %s に書き出しました",

		// Batch
		"Converting %d files from %s with %d workers":           "%[2]s の %[1]d ファイルを %[3]d ワーカーで変換中",
		"Batch finished: %d succeeded, %d failed, %d cancelled": "バッチ完了: 成功 %d, 失敗 %d, キャンセル %d",
		"Skipping %s: %v":                                       "%s をスキップします: %v",
		"Conversion of %s failed (%s): %v":                      "%s の変換に失敗しました (%s): %v",
		"Converted %s in %s":                                    "%s を %s で変換しました",

		// Asset loading and decoding
		"Track %d: %s %s %dx%d, %d samples, frame duration %s": "トラック %d: %s %s %dx%d, %d サンプル, フレーム時間 %s",
		"Decoding track %d of %s (%s, %dx%d)":                  "%[2]s のトラック %[1]d をデコード中 (%[3]s, %[4]dx%[5]d)",
		"Output %s ended at ordinal %d":                        "出力 %s は序数 %d で終了しました",

		// Demux stage
		"Skipping %s sample at ordinal %d":                  "序数 %[2]d の %[1]s サンプルをスキップします",
		"Demultiplexed %d samples (%d dropped, %d skipped)": "%d サンプルを分離しました (破棄 %d, スキップ %d)",
		"View %s: %d frames":                                "ビュー %s: %d フレーム",

		// Composite stage
		"Compositing %d frame pairs (%s, %dx%d)": "%d フレームペアを合成中 (%s, %dx%d)",

		// Encode stage
		"Encoding %s at %dx%d":                         "%s を %dx%d でエンコード中",
		"Encoded %d frames to %s":                      "%d フレームを %s にエンコードしました",
		"Removing existing output %s":                  "既存の出力 %s を削除します",
		"Opened %s (%dx%d, frame duration %s)":         "%s を開きました (%dx%d, フレーム時間 %s)",
		"Skipping frame %d: %v":                        "フレーム %d をスキップします: %v",
		"Finalized %s (%d frames written, %d skipped)": "%s を確定しました (書き込み %d フレーム, スキップ %d)",

		// H.264 encoder
		"Started ffmpeg for %s (%dx%d, queue %d, pool %d)": "%s の ffmpeg を起動しました (%dx%d, キュー %d, プール %d)",
		"Encoding %s failed: %v":                           "%s のエンコードに失敗しました: %v",
		"Muxing %d access units into %s":                   "%d アクセスユニットを %s に多重化中",
	})
}
