// Package main provides localization for the stereoshow CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":            "出力",
		"Composition":       "合成",
		"Video and Quality": "動画と品質",
		"Debug":             "デバッグ",
		"Logging":           "ログ",

		// Root command
		"Convert stereo video into single-view H.264 MP4":                                                "ステレオ動画を単一ビューの H.264 MP4 に変換",
		"stereoshow turns MV-HEVC stereo recordings into side-by-side, overlay or per-eye H.264 videos.": "stereoshowはMV-HEVCステレオ録画を、左右並列・重ね合わせ・片目ごとのH.264動画に変換します。",
		"Error: %v":                                                                                      "エラー: %v",

		// Commands
		"Composite the stereo views of one file into a single video":           "1ファイルのステレオビューを1本の動画に合成",
		"Write the left, right and depth views of one file to separate videos": "1ファイルの左・右・深度ビューを別々の動画に書き出し",
		"Convert every video in a directory":                                   "ディレクトリ内のすべての動画を変換",
		"Show the video tracks of an MP4 or QuickTime file":                    "MP4またはQuickTimeファイルの映像トラックを表示",
		"Show version information":                                             "バージョン情報を表示",
		"stereoshow version %s":                                                "stereoshow バージョン %s",
		"%s requires exactly one input file":                                   "%s には入力ファイルを1つだけ指定してください",

		// Common flags
		"YAML configuration file (flags override its values)":                  "YAML設定ファイル（フラグの値が優先されます）",
		"Composite layout (side-by-side, overlay)":                             "合成レイアウト（side-by-side, overlay）",
		"Rotation applied to each view (none, right, down, left)":              "各ビューに適用する回転（none, right, down, left）",
		"Canvas background color (hex, e.g., #000000)":                         "キャンバスの背景色（16進数、例: #000000）",
		"Do not write the depth track":                                         "深度トラックを書き出さない",
		"Video quality (CRF 0-63, lower is better)":                            "動画品質（CRF 0-63、低いほど高品質）",
		"Target bitrate in kbps (0 = quality-driven)":                          "目標ビットレート kbps（0 = 品質優先）",
		"Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)": "ffmpeg 実行ファイルのパス（未指定時は環境変数 FFMPEG_PATH、次に PATH）",
		"Enable debug output":                                                  "デバッグ出力を有効化",
		"Directory for debug output":                                           "デバッグ出力先ディレクトリ",
		"Log level (debug, info, warn, error)":                                 "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                              "すべてのログ出力を抑制",

		// Convert, split and batch flags
		"Output directory (default: next to the input)":           "出力ディレクトリ（デフォルト: 入力と同じ場所）",
		"Directory of input videos (default: input)":              "入力動画のディレクトリ（デフォルト: input）",
		"Directory for converted videos (default: output)":        "変換後の動画の出力先（デフォルト: output）",
		"Files converted at once":                                 "同時に変換するファイル数",
		"Write per-view files instead of a composite":             "合成せずにビューごとのファイルを書き出す",
		"Write a Markdown summary to this path":                   "Markdown形式のサマリーをこのパスに書き出す",
		"Also print the sample timeline of the first video track": "最初の映像トラックのサンプルタイムラインも表示",

		// Results
		"%d of %d files were not converted":    "%[2]d ファイル中 %[1]d ファイルが変換されませんでした",
		"File: %s (fragmented: %t)":            "ファイル: %s（フラグメント: %t）",
		"  Views: %v":                          "  ビュー: %v",
		"Timeline of track %d (timescale %d):": "トラック %d のタイムライン（タイムスケール %d）:",
		"succeeded":                            "成功",
		"failed":                               "失敗",
		"cancelled":                            "キャンセル",

		// Summary
		"Conversion Summary": "変換サマリー",
		"Generated":          "生成日時",
		"Results":            "結果",
		"Item":               "項目",
		"Value":              "値",
		"Input directory":    "入力ディレクトリ",
		"Output directory":   "出力ディレクトリ",
		"Files":              "ファイル",
		"Succeeded":          "成功",
		"Failed":             "失敗",
		"Cancelled":          "キャンセル",
		"Elapsed":            "経過時間",
		"Settings":           "設定",
		"Setting":            "設定項目",
		"Mode":               "モード",
		"Layout":             "レイアウト",
		"Orientation":        "向き",
		"Depth":              "深度",
		"Workers":            "ワーカー数",
		"Quality":            "品質",
		"Bitrate":            "ビットレート",
		"Input":              "入力",
		"Status":             "状態",
		"Frames":             "フレーム数",
		"Outputs":            "出力",
		"no depth":           "深度なし",
		"Errors":             "エラー",
		"yes":                "はい",
		"no":                 "いいえ",
	})
}
