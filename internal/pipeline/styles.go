/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package pipeline

// Style selects the visual treatment appended to the base instruction.
// The selector is a fixed enumeration; there is no free-text user prompt.
type Style string

const (
	StyleWatercolor Style = "watercolor"
	StyleCartoon    Style = "cartoon"
	StyleSketchbook Style = "sketchbook"
)

// basePrompt biases the model toward treating the payload as a sketch to
// finish rather than a photo to edit.
const basePrompt = "Redraw the sketch in this image as a finished illustration. " +
	"Keep the composition, subjects and proportions of the sketch exactly as drawn."

var styleDirectives = map[Style]string{
	StyleWatercolor: "Paint it in soft watercolor washes with visible paper grain.",
	StyleCartoon:    "Draw it as a bold flat-color cartoon with clean dark outlines.",
	StyleSketchbook: "Render it as refined ink linework with light crosshatched shading.",
}

// Prompt builds the full instruction for a style. Unknown styles fall back
// to watercolor so a stale host value still produces a usable request.
func Prompt(s Style) string {
	d, ok := styleDirectives[s]
	if !ok {
		d = styleDirectives[StyleWatercolor]
	}
	return basePrompt + " " + d
}
