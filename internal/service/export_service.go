package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/sitaurs/apm-portal-sub000/internal/dto"
	"github.com/sitaurs/apm-portal-sub000/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// exportMaxRows 单次导出上限
const exportMaxRows = 10000

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportSubmissions 导出提交列表（筛选条件同管理端列表）
	ExportSubmissions(ctx context.Context, req *dto.SubmissionListRequest, actor *Identity) (*bytes.Buffer, string, error)
	// ExportPrestasi 导出全部成就（含未发布）
	ExportPrestasi(ctx context.Context, actor *Identity) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, now: time.Now, logger: logger}
}

var submissionHeaders = []string{
	"ID", "Judul", "Nama Lomba", "Tingkat", "Peringkat", "Tahun", "Tanggal", "Kategori",
	"Nama Pengaju", "NIM", "Email", "WhatsApp",
	"Status", "Tampilan", "Catatan Reviewer", "Direview Pada", "Dibuat Pada",
}

var prestasiHeaders = []string{
	"ID", "Slug", "Judul", "Nama Lomba", "Tingkat", "Peringkat", "Tahun", "Kategori",
	"Dipublikasikan", "Unggulan", "Tanggal Publikasi", "ID Pengajuan", "Jumlah Galeri",
}

func (s *exportService) ExportSubmissions(ctx context.Context, req *dto.SubmissionListRequest, actor *Identity) (*bytes.Buffer, string, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, "", err
	}

	filter := repository.SubmissionFilter{
		Status:       req.Status,
		DisplayState: req.DisplayState,
		Tahun:        req.Tahun,
		Q:            strings.TrimSpace(req.Q),
	}
	subs, _, err := s.repo.Submission.List(ctx, filter, 0, exportMaxRows)
	if err != nil {
		s.logger.Error("查询导出提交失败", zap.Error(err))
		return nil, "", err
	}

	rows := make([][]interface{}, 0, len(subs))
	for i := range subs {
		sub := &subs[i]
		rows = append(rows, []interface{}{
			sub.ID, sub.Judul, sub.NamaLomba, sub.Tingkat, sub.Peringkat, sub.Tahun,
			strOrEmpty(formatDatePtr(sub.Tanggal)), strOrEmpty(sub.Kategori),
			sub.SubmitterNama, sub.SubmitterNIM, strOrEmpty(sub.SubmitterEmail), strOrEmpty(sub.SubmitterWhatsapp),
			sub.Status, sub.DisplayState(), strOrEmpty(sub.ReviewerNotes),
			strOrEmpty(formatTimePtr(sub.ReviewedAt)), sub.CreatedAt.Format(timeLayout),
		})
	}

	buf, err := s.writeSheet("Pengajuan", submissionHeaders, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("pengajuan_prestasi_%s.xlsx", s.now().Format("20060102")), nil
}

func (s *exportService) ExportPrestasi(ctx context.Context, actor *Identity) (*bytes.Buffer, string, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, "", err
	}

	items, _, err := s.repo.Prestasi.List(ctx, repository.PrestasiFilter{IncludeUnpublished: true}, 0, exportMaxRows)
	if err != nil {
		s.logger.Error("查询导出成就失败", zap.Error(err))
		return nil, "", err
	}

	rows := make([][]interface{}, 0, len(items))
	for i := range items {
		p := &items[i]
		var subID interface{} = ""
		if p.SubmissionID != nil {
			subID = *p.SubmissionID
		}
		rows = append(rows, []interface{}{
			p.ID, p.Slug, p.Judul, p.NamaLomba, p.Tingkat, p.Peringkat, p.Tahun, strOrEmpty(p.Kategori),
			yaTidak(p.IsPublished), yaTidak(p.IsFeatured), strOrEmpty(formatTimePtr(p.PublishedAt)),
			subID, len(p.Galeri),
		})
	}

	buf, err := s.writeSheet("Prestasi", prestasiHeaders, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("prestasi_%s.xlsx", s.now().Format("20060102")), nil
}

// writeSheet 生成单 Sheet 表格：首行表头，其余为数据
func (s *exportService) writeSheet(sheetName string, headers []string, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range headers {
		c, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, c, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle)

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(sheetName, "A", lastCol, 18)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for r, row := range rows {
		c, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheetName, c, &row); err != nil {
			s.logger.Error("写入数据行失败", zap.Int("row", r+2), zap.Error(err))
			return nil, ErrExportGenerateFail
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yaTidak(b bool) string {
	if b {
		return "Ya"
	}
	return "Tidak"
}
